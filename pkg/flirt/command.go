// Package flirt builds the FSL flirt command line used for isotropic resampling
// and checks that an FSL installation can serve it.
package flirt

import (
	"isoresample/internal/models"
	"isoresample/pkg/config"
)

// BuildIsoResample constructs
//
//	<dir>/bin/flirt -in IN -out OUT -ref IN -init <dir>/etc/flirtsch/ident.mat \
//	    -applyisoxfm RES -interp sinc -sincwindow hanning
//
// Flag names and their order are fixed; flirt's parser depends on -ref and -init
// being present even though the transform is the identity.
func BuildIsoResample(fsl config.FSL, req models.Request) models.Invocation {
	return models.Invocation{
		Path: fsl.ToolPath(),
		Args: []string{
			"-in", req.Input,
			"-out", req.Output,
			"-ref", req.Input,
			"-init", fsl.IdentityPath(),
			"-applyisoxfm", req.Resolution,
			"-interp", fsl.Interp,
			"-sincwindow", fsl.SincWindow,
		},
	}
}
