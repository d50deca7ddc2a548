// contextengine 为对话请求组装受 Token 预算约束的上下文。
//
// 子命令：
//
//	contextengine serve    [--config path] [--addr :8080]
//	contextengine assemble [--config path] --query text [--project id] [--max-tokens n] [--messages]
//
// 配置按默认值、YAML 文件、CONTEXTENGINE_* 环境变量的顺序叠加。
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		printUsage(stdout)
		return errors.New("missing subcommand")
	}

	switch args[0] {
	case "serve":
		return runServe(ctx, args[1:])
	case "assemble":
		return runAssemble(ctx, args[1:], stdout)
	case "-h", "--help", "help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stdout)
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: contextengine <serve|assemble> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'contextengine <subcommand> --help' for flags.")
}

// parseFlags 解析子命令参数，--help 时返回 pflag.ErrHelp
func parseFlags(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if extra := fs.Args(); len(extra) > 0 {
		return fmt.Errorf("unexpected arguments: %v", extra)
	}
	return nil
}
