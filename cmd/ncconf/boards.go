package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/reoring/ncconf/board"
)

var boardsCmd = &cobra.Command{
	Use:   "boards [ID|NAME]",
	Short: "List known controller boards or show one board's pins",
	Long: `Without arguments, list the built-in boards plus any loaded with
--boards-file. With a board id or display name, show its pins and
capabilities.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		w := cmd.OutOrStdout()

		if len(args) == 0 {
			if asJSON {
				return writeJSON(w, boards.All())
			}
			t := newTable("ID", "NAME", "MANUFACTURER", "PINS", "UART")
			for _, d := range boards.All() {
				t.Row(d.ID, d.Name, d.Manufacturer, strconv.Itoa(len(d.Pins)), strconv.Itoa(d.Capabilities.UARTChannels))
			}
			fmt.Fprintln(w, t.Render())
			return nil
		}

		d, ok := boards.Resolve(args[0])
		if !ok {
			return fmt.Errorf("unknown board %q", args[0])
		}
		if asJSON {
			return writeJSON(w, d)
		}
		writeBoard(cmd, d)
		return nil
	},
}

func init() {
	boardsCmd.Flags().Bool("json", false, "print descriptors as JSON")
}

func writeBoard(cmd *cobra.Command, d *board.Descriptor) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%s)\n", d.Name, d.ID)
	if d.Description != "" {
		fmt.Fprintln(w, d.Description)
	}
	c := d.Capabilities
	fmt.Fprintf(w, "UART %d  SPI %d  I2C %d  ADC %d  DAC %d  PWM %d\n",
		c.UARTChannels, c.SPIChannels, c.I2CChannels, c.ADCChannels, c.DACChannels, c.PWMChannels)
	if d.Notes != "" {
		fmt.Fprintln(w, out.dim.Render(d.Notes))
	}
	fmt.Fprintln(w, boardPinTable(d.Pins).Render())
}
