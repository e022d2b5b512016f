package schema

import (
	"fmt"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/document"
)

// Typical stepper limits used by the cross-field checks.
const (
	MinStepsPerMM       = 1.0
	MaxStepsPerMM       = 10000.0
	MaxStepRate         = 80000.0  // steps/s
	MaxStepAcceleration = 200000.0 // steps/s²
)

// CheckAxis runs the advisory cross-field checks on one projected axis. The
// returned issues carry code domain_range and paths relative to the document
// root; they are warnings, not schema violations. A check whose inputs are
// missing passes.
func CheckAxis(a AxisConfig) ncconf.Issues {
	at := ncconf.Path{"axes", a.ID}
	var iss ncconf.Issues
	if a.StepsPerMM != nil {
		spm := *a.StepsPerMM
		if spm < MinStepsPerMM || spm > MaxStepsPerMM {
			msg := fmt.Sprintf("steps_per_mm (%s) appears inconsistent; expected between %s and %s",
				document.FormatNumber(spm), document.FormatNumber(MinStepsPerMM), document.FormatNumber(MaxStepsPerMM))
			if micro, ok := a.Microsteps(); ok {
				msg += fmt.Sprintf(" for %s microsteps", document.FormatNumber(micro))
			}
			iss = append(iss, at.Field("steps_per_mm").IssueAt(ncconf.CodeDomainRange, msg, "got", spm))
		}
		if a.MaxRateMMPerMin != nil {
			stepsPerSec := spm * *a.MaxRateMMPerMin / 60
			if stepsPerSec > MaxStepRate {
				msg := fmt.Sprintf("max_rate_mm_per_min requires %s steps/s which exceeds typical stepper limit of %s steps/s",
					document.FormatNumber(stepsPerSec), document.FormatNumber(MaxStepRate))
				iss = append(iss, at.Field("max_rate_mm_per_min").IssueAt(ncconf.CodeDomainRange, msg, "got", stepsPerSec, "max", MaxStepRate))
			}
		}
		if a.AccelerationMMPerSec2 != nil {
			stepsPerSec2 := spm * *a.AccelerationMMPerSec2
			if stepsPerSec2 > MaxStepAcceleration {
				msg := fmt.Sprintf("acceleration_mm_per_sec2 requires %s steps/s² which may be too high (limit %s)",
					document.FormatNumber(stepsPerSec2), document.FormatNumber(MaxStepAcceleration))
				iss = append(iss, at.Field("acceleration_mm_per_sec2").IssueAt(ncconf.CodeDomainRange, msg, "got", stepsPerSec2, "max", MaxStepAcceleration))
			}
		}
	}
	if a.MaxRateMMPerMin != nil && a.Homing != nil {
		limit := *a.MaxRateMMPerMin
		for _, hr := range []struct {
			key  string
			rate *float64
		}{{"feed_mm_per_min", a.Homing.FeedMMPerMin}, {"seek_mm_per_min", a.Homing.SeekMMPerMin}} {
			if hr.rate != nil && *hr.rate > limit {
				msg := fmt.Sprintf("homing %s (%s) exceeds axis max_rate_mm_per_min (%s)",
					hr.key, document.FormatNumber(*hr.rate), document.FormatNumber(limit))
				iss = append(iss, at.Field("homing").Field(hr.key).IssueAt(ncconf.CodeDomainRange, msg, "got", *hr.rate, "max", limit))
			}
		}
	}
	return iss
}

// CheckAxes runs CheckAxis over every projected axis of doc.
func CheckAxes(doc document.Value) ncconf.Issues {
	var iss ncconf.Issues
	for _, a := range Project(doc).Axes {
		iss = append(iss, CheckAxis(a)...)
	}
	return iss
}
