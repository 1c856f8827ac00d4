package emtools

import (
	"context"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/client-go/kubernetes"
	ctrl "sigs.k8s.io/controller-runtime"

	v1 "github.com/infinidb/emtools/api/v1"
	"github.com/infinidb/emtools/pkg/clusterd"
	"github.com/infinidb/emtools/pkg/config"
	"github.com/infinidb/emtools/pkg/discover"
	"github.com/infinidb/emtools/pkg/idbxml"
	"github.com/infinidb/emtools/pkg/k8sutil"
	"github.com/infinidb/emtools/pkg/probe"
)

const (
	outputJSON = "json"
	outputText = "text"
)

var GetFactsCmd = &cobra.Command{
	Use:   "getfacts",
	Short: "Discover the hosts of a cluster from a FactRequest",
	Long: `getfacts reads a FactRequest from a file (--json) or from standard input (-i),
probes every host it names and prints the resulting FactReply.`,
	Args: cobra.NoArgs,
	RunE: runGetFacts,
}

type factsOptions struct {
	jsonFile    string
	stdin       bool
	output      string
	k8sNodes    bool
	k8sSelector string
	k8sLabels   map[string]string
}

var factsOpts = &factsOptions{}

func init() {
	factsOpts.addFlags(GetFactsCmd.Flags())
}

func (o *factsOptions) addFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.jsonFile, "json", "", "file holding the FactRequest")
	flags.BoolVarP(&o.stdin, "stdin", "i", false, "read the FactRequest from standard input")
	flags.StringVar(&o.output, "output", outputJSON, "output format, json or text")
	flags.BoolVar(&o.k8sNodes, "k8s-nodes", false, "add the addresses of the kubernetes nodes to the seed hosts")
	flags.StringVar(&o.k8sSelector, "k8s-selector", "", "label selector for --k8s-nodes")
	flags.StringToStringVar(&o.k8sLabels, "k8s-label", nil, "node label for --k8s-nodes, may be repeated")
}

// validate reports usage errors, which are not turned into an ErrorMsg.
func (o *factsOptions) validate() error {
	if (o.jsonFile != "") == o.stdin {
		return errors.New("exactly one of --json or -i is required")
	}
	if o.output != outputJSON && o.output != outputText {
		return errors.Errorf("unknown output format %q", o.output)
	}
	if (o.k8sSelector != "" || len(o.k8sLabels) > 0) && !o.k8sNodes {
		return errors.New("--k8s-selector and --k8s-label require --k8s-nodes")
	}
	return nil
}

// readRequest decodes the request without validating it, so seed hosts can
// still be added.
func (o *factsOptions) readRequest(in io.Reader) (*v1.FactRequest, error) {
	var (
		data []byte
		err  error
	)
	if o.stdin {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(o.jsonFile)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read FactRequest")
	}

	req := &v1.FactRequest{}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, req); err != nil {
		return nil, errors.Wrap(err, "failed to decode FactRequest")
	}
	return req, nil
}

func runGetFacts(cmd *cobra.Command, _ []string) error {
	if err := factsOpts.validate(); err != nil {
		return err
	}

	// everything past this point is reported as an ErrorMsg on stdout
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	out := cmd.OutOrStdout()
	reply, err := getFacts(cmd, factsOpts)
	if err != nil {
		logger.Errorf("getfacts failed: %v", err)
		return printErrorMsg(out, err)
	}

	if factsOpts.output == outputText {
		renderText(out, reply)
		return nil
	}
	data, err := reply.Encode()
	if err != nil {
		return printErrorMsg(out, err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func getFacts(cmd *cobra.Command, o *factsOptions) (*v1.FactReply, error) {
	req, err := o.readRequest(cmd.InOrStdin())
	if err != nil {
		return nil, err
	}

	opts, err := loadOptions(cmd)
	if err != nil {
		return nil, err
	}
	cctx := clusterd.NewContext(opts, ctrl.Log.WithName("getfacts"))

	if o.k8sNodes {
		kubeConfig, err := ctrl.GetConfig()
		if err != nil {
			return nil, errors.Wrap(err, "failed to load kubernetes config")
		}
		cctx.Clientset, err = kubernetes.NewForConfig(kubeConfig)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create kubernetes clientset")
		}
		if err := seedFromNodes(cmd.Context(), cctx, k8sutil.GetLabelSelector(o.k8sLabels, o.k8sSelector), req); err != nil {
			return nil, err
		}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	engine, err := newEngine(cmd.Context(), cctx, req)
	if err != nil {
		return nil, err
	}
	return engine.Run(cmd.Context(), req)
}

// seedFromNodes appends the addresses of the selected kubernetes nodes to the
// seed hosts of req.
func seedFromNodes(ctx context.Context, cctx *clusterd.Context, selector string, req *v1.FactRequest) error {
	addrs, err := k8sutil.GetNodeAddresses(ctx, cctx.Clientset, selector)
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		logger.Warningf("no kubernetes nodes matched selector %q", selector)
	}
	req.AddHostnames(addrs...)
	return nil
}

// newEngine prepares the playbook directory of the cluster and wires a
// discovery engine to it.
func newEngine(ctx context.Context, cctx *clusterd.Context, req *v1.FactRequest) (*discover.Engine, error) {
	pb, err := cctx.Playbook(req.ClusterName)
	if err != nil {
		return nil, err
	}
	version, err := pb.AnsibleVersion(ctx)
	if err != nil {
		return nil, err
	}
	logger.Infof("using %s", version)
	if err := pb.ConfigSSH(req.SSHUser, req.SSHKey, req.SSHPass, req.SSHPort); err != nil {
		return nil, err
	}
	hostProbe, err := probe.NewAnsibleProbe(pb)
	if err != nil {
		return nil, err
	}

	return discover.NewEngine(
		cctx.Log.WithName("discover"),
		hostProbe,
		idbxml.FileResolver{},
		cctx.Resolver,
		engineOptions(cctx.Options),
	), nil
}

func engineOptions(opts *config.Options) discover.Options {
	return discover.Options{
		Parallelism:     opts.Parallelism,
		RequireSudo:     opts.HostChecks.RequireSudo,
		RuntimeVersions: opts.HostChecks.RuntimeVersions,
	}
}

// printErrorMsg writes err as an ErrorMsg and returns an error so the
// process exits non-zero.
func printErrorMsg(w io.Writer, err error) error {
	msg := v1.NewErrorMsg(errors.Cause(err))
	msg.Msg = err.Error()
	data, encErr := msg.Encode()
	if encErr != nil {
		return errors.Wrap(encErr, "failed to encode ErrorMsg")
	}
	fmt.Fprintln(w, string(data))
	return err
}
