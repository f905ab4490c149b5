// Command enginectl talks to the engine monitor over gRPC.
//
//	enginectl query    --ship Jatra --engine "Mesin 1"
//	enginectl generate --seed 7 --days 30 [--start 2024-04-01]
//	enginectl export   --ship Sebuku --ship Legundi --engine "Mesin 2"
//	enginectl ships
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	grpcAdapter "github.com/quentinrf/engine-monitor/internal/adapters/grpc"
	"github.com/quentinrf/engine-monitor/pkg/tlsconfig"
)

const usage = "usage: enginectl <query|generate|export|ships> [flags]"

var errUsage = errors.New(usage)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("enginectl failed")
	}
}

// connFlags are shared by every subcommand
type connFlags struct {
	addr       string
	timeout    time.Duration
	tls        tlsconfig.Files
	serverName string
}

func (c *connFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&c.addr, "addr", "a", envOr("ENGINE_MONITOR_ADDR", "localhost:50051"), "Server gRPC address.")
	fs.DurationVar(&c.timeout, "timeout", 10*time.Second, "Per-call deadline.")
	fs.StringVar(&c.tls.Cert, "tls_cert", os.Getenv("TLS_CERT"), "Client certificate (enables mTLS).")
	fs.StringVar(&c.tls.Key, "tls_key", os.Getenv("TLS_KEY"), "Client private key.")
	fs.StringVar(&c.tls.CA, "tls_ca", os.Getenv("TLS_CA"), "CA certificate for server verification.")
	fs.StringVar(&c.serverName, "server_name", "", "Override the server name checked against its certificate.")
}

func (c *connFlags) dial() (*grpc.ClientConn, error) {
	creds := insecure.NewCredentials()
	if c.tls.Enabled() {
		tlsCfg, err := tlsconfig.LoadClientTLS(c.tls, c.serverName)
		if err != nil {
			return nil, err
		}
		creds = credentials.NewTLS(tlsCfg)
	}
	return grpc.NewClient(c.addr, grpc.WithTransportCredentials(creds))
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	var conn connFlags
	fs := pflag.NewFlagSet("enginectl "+cmd, pflag.ContinueOnError)
	conn.register(fs)

	var (
		ships  []string
		engine string
		seed   int64
		days   int
		start  string
	)
	switch cmd {
	case "query", "export":
		fs.StringArrayVarP(&ships, "ship", "s", nil, "Ship to include (repeatable, empty means all).")
		fs.StringVarP(&engine, "engine", "e", "", "Engine name.")
	case "generate":
		fs.Int64Var(&seed, "seed", time.Now().UnixNano(), "Random seed.")
		fs.IntVarP(&days, "days", "d", 30, "Number of days to generate.")
		fs.StringVar(&start, "start", "", "First date (YYYY-MM-DD); default ends the batch today.")
	case "ships":
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cc, err := conn.dial()
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", conn.addr, err)
	}
	defer cc.Close()

	ctx, cancel := context.WithTimeout(ctx, conn.timeout)
	defer cancel()

	client := grpcAdapter.NewClient(cc)

	var resp *structpb.Struct
	switch cmd {
	case "query":
		resp, err = client.Query(ctx, ships, engine)
	case "export":
		resp, err = client.ExportReport(ctx, ships, engine)
	case "generate":
		resp, err = client.Generate(ctx, seed, start, days)
	case "ships":
		resp, err = client.Ships(ctx)
	}
	if err != nil {
		return fmt.Errorf("%s failed: %w", cmd, err)
	}

	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
