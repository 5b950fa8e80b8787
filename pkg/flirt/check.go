package flirt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"isoresample/pkg/config"
)

var (
	// ErrNotExecutable is returned when the tool path is not an executable regular file
	ErrNotExecutable = errors.New("not an executable file")

	// ErrNotIdentity is returned when the -init matrix is not the identity
	ErrNotIdentity = errors.New("matrix is not the identity")
)

// identityTolerance bounds the per-element deviation accepted from the identity
const identityTolerance = 1e-6

// CheckReport lists what Check verified
type CheckReport struct {
	ToolPath     string
	IdentityPath string
}

// Check verifies that the installation rooted at fsl.Dir has an executable
// tool and a 4x4 identity matrix at the configured locations.
func Check(fsl config.FSL) (*CheckReport, error) {
	report := &CheckReport{
		ToolPath:     fsl.ToolPath(),
		IdentityPath: fsl.IdentityPath(),
	}

	info, err := os.Stat(report.ToolPath)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", report.ToolPath, err)
	}
	if !info.Mode().IsRegular() || info.Mode().Perm()&0111 == 0 {
		return nil, fmt.Errorf("tool %s: %w", report.ToolPath, ErrNotExecutable)
	}

	f, err := os.Open(report.IdentityPath)
	if err != nil {
		return nil, fmt.Errorf("identity matrix %s: %w", report.IdentityPath, err)
	}
	defer f.Close()

	m, err := ReadMatrix(f)
	if err != nil {
		return nil, fmt.Errorf("identity matrix %s: %w", report.IdentityPath, err)
	}
	if !IsIdentity(m) {
		return nil, fmt.Errorf("identity matrix %s: %w", report.IdentityPath, ErrNotIdentity)
	}

	return report, nil
}

// ReadMatrix parses a flirt affine matrix file: four rows of four
// whitespace-separated numbers. Blank lines are skipped.
func ReadMatrix(r io.Reader) (*mat.Dense, error) {
	values := make([]float64, 0, 16)
	rows := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("row %d has %d columns, want 4", rows+1, len(fields))
		}
		rows++
		if rows > 4 {
			return nil, fmt.Errorf("more than 4 rows")
		}
		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", rows, err)
			}
			values = append(values, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if rows != 4 {
		return nil, fmt.Errorf("got %d rows, want 4", rows)
	}

	return mat.NewDense(4, 4, values), nil
}

// IsIdentity reports whether m is a 4x4 matrix within tolerance of the identity
func IsIdentity(m mat.Matrix) bool {
	r, c := m.Dims()
	if r != 4 || c != 4 {
		return false
	}
	ident := mat.NewDiagDense(4, []float64{1, 1, 1, 1})
	return mat.EqualApprox(m, ident, identityTolerance)
}
