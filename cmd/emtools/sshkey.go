package emtools

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var SSHKeyCmd = &cobra.Command{
	Use:          "sshkey <file>",
	Short:        "Print a private key file as a JSON string",
	Long:         `sshkey prints the key so it can be pasted as the ssh_key of a FactRequest.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printKey(cmd.OutOrStdout(), args[0])
	},
}

func printKey(w io.Writer, path string) error {
	key, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read key file %s", path)
	}
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(string(key))
	if err != nil {
		return errors.Wrap(err, "failed to encode key")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
