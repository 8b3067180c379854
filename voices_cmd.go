package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/versoapp/verso/internal/speech"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List installed voice models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir := resolveModelDir(playbackCfg)
		catalog := speech.NewDirCatalog(dir)
		if err := catalog.Ready(cmd.Context()); err != nil {
			return fmt.Errorf("no voices found in %s: %w", dir, err)
		}

		voices := catalog.Voices()
		selected, err := speech.SelectVoice(voices, playbackCfg.Language, speech.Profile(playbackCfg.VoiceProfile))
		if err != nil {
			return err
		}

		fmt.Printf("Voices in %s:\n\n", dir)
		for _, v := range voices {
			marker := "  "
			if v.ID == selected.ID {
				marker = keyword("* ")
			}
			gender := v.Gender
			if gender == "" {
				gender = "unspecified"
			}
			fmt.Printf("%s%s  (%s, %s)\n", marker, v.Name, v.Language, gender)
		}
		fmt.Printf("\n%s would be used for profile %q and language %q.\n", selected.Name, playbackCfg.VoiceProfile, playbackCfg.Language)
		return nil
	},
}
