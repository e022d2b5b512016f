package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	ncconf "github.com/reoring/ncconf"
	"github.com/reoring/ncconf/calc"
	"github.com/reoring/ncconf/document"
	"github.com/reoring/ncconf/schema"
	"github.com/reoring/ncconf/source"
)

var stepsParams calc.Params

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "Calculate steps_per_mm from drive mechanics",
	Long: `Calculate an axis's steps_per_mm for a belt, leadscrew or rack and pinion
drive. Unset parameters take common defaults (200 step motor, 16 microsteps,
GT2 20 tooth pulley, 8 mm lead, 20 tooth pinion on a 2 mm rack).

Without --drive the mechanism is inferred from the parameters given:
leadscrew pitch, then pinion teeth, otherwise belt.

With --apply FILE --axis X the result is written to axes.X.steps_per_mm in
FILE (migrated to the canonical layout on the way).

  ncconf steps --drive belt --pulley-teeth 16
  ncconf steps --leadscrew-pitch 2 --apply machine.yaml --axis z`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		driveName, _ := cmd.Flags().GetString("drive")
		apply, _ := cmd.Flags().GetString("apply")
		axis, _ := cmd.Flags().GetString("axis")

		var (
			drive calc.Drive
			v     float64
			err   error
		)
		if driveName == "" {
			drive, v, err = calc.Auto(stepsParams)
		} else {
			if drive, err = calc.ParseDrive(driveName); err == nil {
				v, err = calc.StepsPerMM(drive, stepsParams)
			}
		}
		if err != nil {
			return err
		}
		v = calc.Round2(v)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s steps/mm\n", drive, document.FormatNumber(v))

		if apply == "" {
			return nil
		}
		if axis == "" {
			return fmt.Errorf("--apply needs --axis")
		}
		return applySteps(cmd, apply, axis, v)
	},
}

func init() {
	f := stepsCmd.Flags()
	f.String("drive", "", "belt, leadscrew or rack_pinion (default: inferred)")
	f.Float64Var(&stepsParams.MotorStepsPerRev, "motor-steps", 0, "full steps per motor revolution")
	f.Float64Var(&stepsParams.Microsteps, "microsteps", 0, "driver microstepping")
	f.Float64Var(&stepsParams.GearRatio, "gear-ratio", 0, "gearbox reduction")
	f.Float64Var(&stepsParams.DrivePulleyTeeth, "pulley-teeth", 0, "motor pulley teeth")
	f.Float64Var(&stepsParams.DrivenPulleyTeeth, "driven-teeth", 0, "driven pulley teeth (reduction stage)")
	f.Float64Var(&stepsParams.BeltPitchMM, "belt-pitch", 0, "belt pitch in mm")
	f.Float64Var(&stepsParams.LeadscrewPitchMM, "leadscrew-pitch", 0, "leadscrew lead in mm per revolution")
	f.Float64Var(&stepsParams.PinionTeeth, "pinion-teeth", 0, "pinion teeth")
	f.Float64Var(&stepsParams.RackPitchMM, "rack-pitch", 0, "rack pitch in mm")
	f.String("apply", "", "write the result into this configuration file")
	f.String("axis", "", "axis id for --apply (x, y, z, a, b, c)")
}

func applySteps(cmd *cobra.Command, file, axis string, v float64) error {
	o, err := importOpt()
	if err != nil {
		return err
	}
	r, err := importFile(cmd, file, o)
	if err != nil {
		return err
	}
	if !r.Parsed() {
		writeSuggestions(cmd.ErrOrStderr(), r.Suggestions, out)
		return errFailed
	}
	at := ncconf.Path{"axes", axis, "steps_per_mm"}
	doc := r.Document.SetPath(at, document.Number(v))
	if _, err := schema.Validate(cmd.Context(), doc); err != nil {
		return fmt.Errorf("%s after update: %w", file, err)
	}
	data, err := source.ForFile(file).Encode(doc, source.WithComments(schema.CommentFor))
	if err != nil {
		return err
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return err
	}
	logger.Printf("set %s = %s in %s", at, document.FormatNumber(v), file)
	return nil
}
