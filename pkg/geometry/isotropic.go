// Package geometry predicts the voxel grid produced by isotropic resampling.
// The prediction is informational; the external tool decides the real grid.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"isoresample/internal/models"
)

// ErrInvalidGeometry is returned for non-positive or non-finite sizes and spacings
var ErrInvalidGeometry = errors.New("invalid geometry")

// ParseResolution converts the resolution argument to mm
func ParseResolution(s string) (float64, error) {
	iso, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: resolution %q: %v", ErrInvalidGeometry, s, err)
	}
	if !positive(iso) {
		return 0, fmt.Errorf("%w: resolution %q must be positive", ErrInvalidGeometry, s)
	}
	return iso, nil
}

// FieldOfView returns the physical extent of vol in mm as diag(spacing) * size
func FieldOfView(vol models.Volume) (*mat.VecDense, error) {
	size := []float64{float64(vol.Width), float64(vol.Height), float64(vol.Depth)}
	spacing := []float64{vol.VoxelSize.X, vol.VoxelSize.Y, vol.VoxelSize.Z}

	for i := range size {
		if !positive(size[i]) {
			return nil, fmt.Errorf("%w: dimension %d has size %v", ErrInvalidGeometry, i, size[i])
		}
		if !positive(spacing[i]) {
			return nil, fmt.Errorf("%w: dimension %d has spacing %v", ErrInvalidGeometry, i, spacing[i])
		}
	}

	scale := mat.NewDiagDense(3, spacing)
	fov := mat.NewVecDense(3, nil)
	fov.MulVec(scale, mat.NewVecDense(3, size))
	return fov, nil
}

// Isotropic returns the grid covering the same field of view as vol with
// cubic voxels of side iso mm. Each dimension is rounded to the nearest
// whole voxel and is never less than one.
func Isotropic(vol models.Volume, iso float64) (models.Volume, error) {
	if !positive(iso) {
		return models.Volume{}, fmt.Errorf("%w: resolution %v must be positive", ErrInvalidGeometry, iso)
	}

	fov, err := FieldOfView(vol)
	if err != nil {
		return models.Volume{}, err
	}

	var dims [3]int
	for i := range dims {
		n := int(math.Round(fov.AtVec(i) / iso))
		if n < 1 {
			n = 1
		}
		dims[i] = n
	}

	out := models.Volume{Width: dims[0], Height: dims[1], Depth: dims[2]}
	out.VoxelSize.X, out.VoxelSize.Y, out.VoxelSize.Z = iso, iso, iso
	return out, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
