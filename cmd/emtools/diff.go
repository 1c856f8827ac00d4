package emtools

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	v1 "github.com/infinidb/emtools/api/v1"
)

var DiffCmd = &cobra.Command{
	Use:   "diff <old.json> <new.json>",
	Short: "Print the changes between two FactReplies",
	Long: `diff prints the JSON merge patch that turns the first FactReply into the
second one. "{}" means both describe the same fleet.`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return diffReplies(cmd.OutOrStdout(), args[0], args[1])
	},
}

func diffReplies(w io.Writer, oldPath, newPath string) error {
	oldReply, err := readReply(oldPath)
	if err != nil {
		return err
	}
	newReply, err := readReply(newPath)
	if err != nil {
		return err
	}

	patch, err := v1.DiffReplies(oldReply, newReply)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(patch))
	return err
}

func readReply(path string) (*v1.FactReply, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	reply, err := v1.DecodeFactReply(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid reply in %s", path)
	}
	return reply, nil
}
