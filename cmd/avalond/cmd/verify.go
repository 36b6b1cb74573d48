package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"onchainavalon/internal/avalon"
	"onchainavalon/internal/commit"
)

func newVerifyCmd() *cobra.Command {
	var (
		identity  string
		roleName  string
		alignName string
		seedHex   string
		rootHex   string
		proofHex  string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a role reveal against a published commitment offline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			role, err := avalon.ParseRole(roleName)
			if err != nil {
				return err
			}
			alignment, err := avalon.ParseAlignment(alignName)
			if err != nil {
				return err
			}
			seed, err := commit.ParseHash(seedHex)
			if err != nil {
				return fmt.Errorf("--seed: %w", err)
			}
			root, err := commit.ParseHash(rootHex)
			if err != nil {
				return fmt.Errorf("--root: %w", err)
			}
			proof, err := parseProof(proofHex)
			if err != nil {
				return err
			}
			if role.Alignment() != alignment {
				return fmt.Errorf("role %s cannot be %s", role, alignment)
			}
			if !commit.Verify([]byte(identity), role.Tag(), alignment.Tag(), seed, proof, root) {
				return fmt.Errorf("proof does not match root %s", commit.FormatHex(root))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&identity, "identity", "", "player identity")
	f.StringVar(&roleName, "role", "", "claimed role")
	f.StringVar(&alignName, "alignment", "", "claimed alignment")
	f.StringVar(&seedHex, "seed", "", "game seed (hex)")
	f.StringVar(&rootHex, "root", "", "published commitment root (hex)")
	f.StringVar(&proofHex, "proof", "", "comma-separated sibling hashes (hex)")
	for _, name := range []string{"identity", "role", "alignment", "seed", "root"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
