package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/archviz/internal/engine"
	"github.com/Faultbox/archviz/internal/logger"
)

// ErrThresholdsNotIncreasing is returned by AttachLOD when distances are not
// strictly increasing.
var ErrThresholdsNotIncreasing = errors.New("scene: LOD thresholds must be strictly increasing")

// DefaultThresholds are the LOD distances used when none are configured:
// the base mesh up close, two stand-in levels, and culling beyond 100.
var DefaultThresholds = []float32{0, 10, 20, 100}

// LODLevel is one registered detail level. A nil Mesh culls the base mesh
// beyond Distance.
type LODLevel struct {
	Distance float32
	Mesh     engine.Mesh
}

// AttachLOD registers detail levels on base. Non-positive thresholds stand
// for the base mesh itself and are skipped. Every other threshold except the
// last gets a clone of base as a stand-in; the last culls.
//
// A clone that fails is logged and its level skipped, leaving base visible
// at that distance.
func AttachLOD(base engine.Mesh, thresholds []float32) ([]LODLevel, error) {
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return nil, fmt.Errorf("%w: %v", ErrThresholdsNotIncreasing, thresholds)
		}
	}

	var distances []float32
	for _, d := range thresholds {
		if d > 0 {
			distances = append(distances, d)
		}
	}

	levels := make([]LODLevel, 0, len(distances))
	for i, d := range distances {
		if i == len(distances)-1 {
			base.AddLODLevel(d, nil)
			levels = append(levels, LODLevel{Distance: d})
			break
		}

		clone, err := base.Clone(fmt.Sprintf("%s_lod%d", base.Name(), i+1))
		if err != nil {
			logger.Warn("LOD level skipped",
				zap.String("mesh", base.Name()),
				zap.Float32("distance", d),
				zap.Error(err))
			continue
		}
		clone.SetEnabled(false)
		base.AddLODLevel(d, clone)
		levels = append(levels, LODLevel{Distance: d, Mesh: clone})
	}
	return levels, nil
}
