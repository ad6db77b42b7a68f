package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/minpairs/internal/audio"
	"codeberg.org/snonux/minpairs/internal/cli"
	"codeberg.org/snonux/minpairs/internal/logging"
	"codeberg.org/snonux/minpairs/internal/processor"
)

func main() {
	flags := cli.NewFlags()

	rootCmd := cli.CreateRootCommand(flags)

	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		// Arguments are valid from here on, later errors are not usage errors
		cmd.SilenceUsage = true
		return runCommand(cmd, args, flags)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.LoadSettings(cmd, flags)
	logger := logging.Init(flags.LogLevel, flags.LogJSON)

	config, err := cli.BuildAudioConfig(flags, nil, logger)
	if err != nil {
		return err
	}

	provider, err := audio.NewProvider(config)
	if err != nil {
		return fmt.Errorf("failed to set up %s backend: %w", config.Provider, err)
	}

	synth, err := audio.NewCheckedSynthesizer(provider, config.MaxConsecutiveFailures, nil, logger)
	if err != nil {
		return err
	}

	proc := processor.NewProcessor(flags, synth, logger)
	_, err = proc.ProcessFile(ctx, args[0])
	return err
}
