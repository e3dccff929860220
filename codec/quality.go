package codec

import (
	"fmt"

	"github.com/dev-tony-hu/zstreams/errs"
	"github.com/dev-tony-hu/zstreams/internal/cgozstd"
)

// Quality is the coarse four-value compression selector offered next to raw
// integer levels.
type Quality uint8

const (
	QualityNone    Quality = iota // fastest possible, minimal effort
	QualityFastest                // alias of QualityNone
	QualityDefault                // codec default, balanced
	QualityMaximum                // best ratio, slowest
)

func (q Quality) String() string {
	switch q {
	case QualityNone:
		return "None"
	case QualityFastest:
		return "Fastest"
	case QualityDefault:
		return "Default"
	case QualityMaximum:
		return "Maximum"
	default:
		return "Unknown"
	}
}

// Level maps the quality onto a concrete codec level: None and Fastest use
// the codec minimum, Default the codec's built-in default, Maximum the codec
// maximum. Values outside the enum fail with errs.ErrInvalidQuality.
func (q Quality) Level() (int, error) {
	switch q {
	case QualityNone, QualityFastest:
		return cgozstd.MinLevel(), nil
	case QualityDefault:
		return cgozstd.DefaultLevel(), nil
	case QualityMaximum:
		return cgozstd.MaxLevel(), nil
	default:
		return 0, fmt.Errorf("%w: %d", errs.ErrInvalidQuality, q)
	}
}
