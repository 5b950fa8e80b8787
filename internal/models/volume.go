package models

// Volume describes the voxel grid of a 3D image
type Volume struct {
	// Width is the width of the volume in voxels
	Width int

	// Height is the height of the volume in voxels
	Height int

	// Depth is the depth of the volume in voxels
	Depth int

	// VoxelSize is the physical size of each voxel in mm
	VoxelSize struct {
		X, Y, Z float64
	}
}

// IsIsotropic reports whether all three voxel dimensions are equal
func (v Volume) IsIsotropic() bool {
	return v.VoxelSize.X == v.VoxelSize.Y && v.VoxelSize.Y == v.VoxelSize.Z
}

// Extent returns the physical size of the volume in mm along each axis
func (v Volume) Extent() (x, y, z float64) {
	return float64(v.Width) * v.VoxelSize.X,
		float64(v.Height) * v.VoxelSize.Y,
		float64(v.Depth) * v.VoxelSize.Z
}
