// Package calc derives an axis's steps_per_mm from its drive mechanics.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Drive is a linear transmission type.
type Drive string

const (
	Belt       Drive = "belt"
	Leadscrew  Drive = "leadscrew"
	RackPinion Drive = "rack_pinion"
)

// Drives lists the supported transmissions.
var Drives = []Drive{Belt, Leadscrew, RackPinion}

// ParseDrive accepts a drive name, case-insensitive; "rack" and
// "rack-pinion" are aliases of rack_pinion.
func ParseDrive(s string) (Drive, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "belt":
		return Belt, nil
	case "leadscrew", "screw":
		return Leadscrew, nil
	case "rack_pinion", "rack-pinion", "rack":
		return RackPinion, nil
	}
	return "", fmt.Errorf("calc: unknown drive %q", s)
}

// ErrInvalidParam reports a negative or non-finite mechanical parameter.
var ErrInvalidParam = errors.New("calc: invalid parameter")

// Params are the mechanical inputs. Zero fields take the defaults: a 200
// step motor at 16 microsteps, a 20 tooth GT2 pulley, an 8 mm lead screw and
// a 20 tooth pinion on a 2 mm rack. DrivenPulleyTeeth defaults to
// DrivePulleyTeeth (1:1).
type Params struct {
	MotorStepsPerRev  float64 `json:"motor_steps_per_rev,omitempty" yaml:"motor_steps_per_rev,omitempty"`
	Microsteps        float64 `json:"microsteps,omitempty" yaml:"microsteps,omitempty"`
	GearRatio         float64 `json:"gear_ratio,omitempty" yaml:"gear_ratio,omitempty"`
	DrivePulleyTeeth  float64 `json:"drive_pulley_teeth,omitempty" yaml:"drive_pulley_teeth,omitempty"`
	DrivenPulleyTeeth float64 `json:"driven_pulley_teeth,omitempty" yaml:"driven_pulley_teeth,omitempty"`
	BeltPitchMM       float64 `json:"belt_pitch_mm,omitempty" yaml:"belt_pitch_mm,omitempty"`
	LeadscrewPitchMM  float64 `json:"leadscrew_pitch_mm,omitempty" yaml:"leadscrew_pitch_mm,omitempty"`
	PinionTeeth       float64 `json:"pinion_teeth,omitempty" yaml:"pinion_teeth,omitempty"`
	RackPitchMM       float64 `json:"rack_pitch_mm,omitempty" yaml:"rack_pitch_mm,omitempty"`
}

const (
	DefaultMotorStepsPerRev = 200
	DefaultMicrosteps       = 16
	DefaultPulleyTeeth      = 20
	DefaultBeltPitchMM      = 2
	DefaultLeadscrewPitchMM = 8
	DefaultPinionTeeth      = 20
	DefaultRackPitchMM      = 2
)

func (p Params) check() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"motor_steps_per_rev", p.MotorStepsPerRev},
		{"microsteps", p.Microsteps},
		{"gear_ratio", p.GearRatio},
		{"drive_pulley_teeth", p.DrivePulleyTeeth},
		{"driven_pulley_teeth", p.DrivenPulleyTeeth},
		{"belt_pitch_mm", p.BeltPitchMM},
		{"leadscrew_pitch_mm", p.LeadscrewPitchMM},
		{"pinion_teeth", p.PinionTeeth},
		{"rack_pitch_mm", p.RackPitchMM},
	}
	for _, f := range fields {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be a positive finite number, got %v", ErrInvalidParam, f.name, f.v)
		}
	}
	return nil
}

func or(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func (p Params) stepsPerRev() float64 {
	return or(p.MotorStepsPerRev, DefaultMotorStepsPerRev) * or(p.Microsteps, DefaultMicrosteps)
}

// BeltStepsPerMM is (steps · microsteps · gear) · (drive / driven) / (drive teeth · pitch).
func BeltStepsPerMM(p Params) (float64, error) {
	if err := p.check(); err != nil {
		return 0, err
	}
	drive := or(p.DrivePulleyTeeth, DefaultPulleyTeeth)
	driven := or(p.DrivenPulleyTeeth, drive)
	pitch := or(p.BeltPitchMM, DefaultBeltPitchMM)
	return p.stepsPerRev() * or(p.GearRatio, 1) * (drive / driven) / (drive * pitch), nil
}

// LeadscrewStepsPerMM is (steps · microsteps · gear) / lead.
func LeadscrewStepsPerMM(p Params) (float64, error) {
	if err := p.check(); err != nil {
		return 0, err
	}
	return p.stepsPerRev() * or(p.GearRatio, 1) / or(p.LeadscrewPitchMM, DefaultLeadscrewPitchMM), nil
}

// RackPinionStepsPerMM is (steps · microsteps) / (pinion teeth · rack pitch).
func RackPinionStepsPerMM(p Params) (float64, error) {
	if err := p.check(); err != nil {
		return 0, err
	}
	return p.stepsPerRev() / (or(p.PinionTeeth, DefaultPinionTeeth) * or(p.RackPitchMM, DefaultRackPitchMM)), nil
}

// Detect picks the drive the parameters describe: a lead screw pitch wins,
// then any rack or pinion field, otherwise belt.
func Detect(p Params) Drive {
	switch {
	case p.LeadscrewPitchMM > 0:
		return Leadscrew
	case p.PinionTeeth > 0 || p.RackPitchMM > 0:
		return RackPinion
	}
	return Belt
}

// StepsPerMM computes steps_per_mm for drive d.
func StepsPerMM(d Drive, p Params) (float64, error) {
	switch d {
	case Belt:
		return BeltStepsPerMM(p)
	case Leadscrew:
		return LeadscrewStepsPerMM(p)
	case RackPinion:
		return RackPinionStepsPerMM(p)
	}
	return 0, fmt.Errorf("calc: unknown drive %q", d)
}

// Auto detects the drive and computes steps_per_mm.
func Auto(p Params) (Drive, float64, error) {
	d := Detect(p)
	v, err := StepsPerMM(d, p)
	return d, v, err
}

// Round2 rounds to two decimal places, the precision written back to
// configuration documents.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }
