package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newAudioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audio",
		Short: "Audio settings for this client",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureClient(); err != nil {
				return err
			}

			var result Audio
			if err := client.Get("/api/v1/audio", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.AddCommand(newAudioVolumeCmd())
	cmd.AddCommand(newAudioMuteCmd())
	cmd.AddCommand(newAudioMusicCmd())
	cmd.AddCommand(newAudioSoundCmd())

	return cmd
}

func newAudioVolumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "volume <0-100>",
		Short: "Set the master volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			volume, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid volume: %w", err)
			}
			return putAudio("/api/v1/audio/volume", map[string]int{"volume": volume})
		},
	}
}

func newAudioMuteCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "mute <on|off>",
		Short:     "Mute or unmute",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var muted bool
			switch strings.ToLower(args[0]) {
			case "on":
				muted = true
			case "off":
				muted = false
			default:
				return fmt.Errorf("mute must be on or off")
			}
			return putAudio("/api/v1/audio/mute", map[string]bool{"muted": muted})
		},
	}
}

func newAudioMusicCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "music <track|none>",
		Short: "Play a background track, or stop the music",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track := args[0]
			if track == "none" {
				track = ""
			}
			return putAudio("/api/v1/audio/music", map[string]string{"track": track})
		},
	}
}

func newAudioSoundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sound <kind>",
		Short: "Play a one-shot sound effect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/audio/sound", map[string]string{"sound": args[0]}, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Played " + args[0])
			return nil
		},
	}
}

func putAudio(path string, req any) error {
	var result Audio
	if err := client.Put(path, req, &result); err != nil {
		return err
	}

	out := NewOutput(cfg.Output)
	out.Print(result)
	return nil
}
