package cmd

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"onchainavalon/internal/assign"
	"onchainavalon/internal/avalon"
	"onchainavalon/internal/commit"
)

type seatOutput struct {
	Identity  string   `json:"identity"`
	Index     int      `json:"index"`
	Role      string   `json:"role"`
	Alignment string   `json:"alignment"`
	Proof     []string `json:"proof"`
}

type assignOutput struct {
	Seed  string       `json:"seed"`
	Root  string       `json:"root"`
	Seats []seatOutput `json:"seats"`
}

func newAssignCmd() *cobra.Command {
	var seedHex, only string
	cmd := &cobra.Command{
		Use:   "assign <identity>...",
		Short: "Deal roles to a roster and print the commitment with every seat's proof",
		Long: "Deal roles to the given identities (in roster order) and print the seed, the " +
			"Merkle root to pass to avalon/start, and each seat's role and proof. Without " +
			"--seed a random 32-byte seed is drawn.",
		Args: cobra.RangeArgs(avalon.MinPlayers, avalon.MaxPlayers),
		RunE: func(cmd *cobra.Command, args []string) error {
			var seed []byte
			if seedHex == "" {
				seed = make([]byte, avalon.SeedSize)
				if _, err := rand.Read(seed); err != nil {
					return fmt.Errorf("draw seed: %w", err)
				}
			} else {
				var err error
				if seed, err = commit.ParseHash(seedHex); err != nil {
					return fmt.Errorf("--seed: %w", err)
				}
			}

			asg, err := assign.Assign(args, seed)
			if err != nil {
				return err
			}
			out := formatAssignment(asg)
			if only != "" {
				seat := asg.SeatOf(only)
				if seat == nil {
					return fmt.Errorf("--seat: %q is not in the roster", only)
				}
				out.Seats = []seatOutput{formatSeat(*seat)}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&seedHex, "seed", "", "32-byte hex seed (random when empty)")
	cmd.Flags().StringVar(&only, "seat", "", "print only this identity's seat (what the arbiter hands that player)")
	return cmd
}

func formatAssignment(asg *assign.Assignment) assignOutput {
	out := assignOutput{
		Seed:  commit.FormatHex(asg.Seed),
		Root:  commit.FormatHex(asg.Root),
		Seats: make([]seatOutput, 0, len(asg.Seats)),
	}
	for _, s := range asg.Seats {
		out.Seats = append(out.Seats, formatSeat(s))
	}
	return out
}

func formatSeat(s assign.Seat) seatOutput {
	proof := make([]string, 0, len(s.Proof))
	for _, p := range s.Proof {
		proof = append(proof, commit.FormatHex(p))
	}
	return seatOutput{
		Identity:  s.Identity,
		Index:     s.Index,
		Role:      s.Role.String(),
		Alignment: s.Alignment.String(),
		Proof:     proof,
	}
}

func parseProof(s string) ([][]byte, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([][]byte, 0, len(parts))
	for i, p := range parts {
		b, err := commit.ParseHash(p)
		if err != nil {
			return nil, fmt.Errorf("proof[%d]: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}
