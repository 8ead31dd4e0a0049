package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/jsphweid/topliner/live"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

var liveIn, liveOut int

func init() {
	liveCmd.Flags().IntVar(&liveIn, "in", 0, "midi input port number (overrides in_port)")
	liveCmd.Flags().IntVar(&liveOut, "out", 0, "midi output port number (overrides out_port)")
	rootCmd.AddCommand(liveCmd)
}

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Runs the engine between two midi ports",
	Long:  `Listens on a midi input port and plays the top line to a midi output port until interrupted.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inPort, outPort := cfg.InPort, cfg.OutPort
		if cmd.Flags().Changed("in") {
			inPort = liveIn
		}
		if cmd.Flags().Changed("out") {
			outPort = liveOut
		}
		return runLive(inPort, outPort)
	},
}

func runLive(inPort, outPort int) error {
	defer midi.CloseDriver()

	in, err := midi.InPort(inPort)
	if err != nil {
		return errors.Wrapf(err, "can't find midi input %v", inPort)
	}
	out, err := midi.OutPort(outPort)
	if err != nil {
		return errors.Wrapf(err, "can't find midi output %v", outPort)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return errors.Wrapf(err, "can't open midi output %v", out)
	}

	bridge := live.NewBridge(cfg.SampleRate, cfg.BlockSize, send)
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		bridge.Receive(msg, time.Now())
	})
	if err != nil {
		return errors.Wrapf(err, "can't listen on midi input %v", in)
	}
	defer stop()

	log.Info().Stringer("in", in).Stringer("out", out).Msg("listening")
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	return bridge.Run(ctx)
}
