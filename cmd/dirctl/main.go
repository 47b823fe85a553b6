// Command dirctl runs directory operations against the configured storage
// backend without going through chat. It reads the same environment as the
// bot.
//
//	dirctl groups
//	dirctl new-group ECO-22
//	dirctl -as 42 register ECO-22 a7
//	dirctl -as 42 publish "exam moved to Friday"
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kapu/group-notice-bot/internal/adapter"
	"github.com/kapu/group-notice-bot/internal/app"
	"github.com/kapu/group-notice-bot/internal/config"
	"github.com/kapu/group-notice-bot/internal/domain"
	"github.com/kapu/group-notice-bot/internal/service/directory"
	"github.com/kapu/group-notice-bot/internal/util"
	"go.uber.org/zap"
)

const usage = `usage: dirctl [-as MEMBER_ID] <command> [args]

commands:
  groups                      list groups
  members                     list registered members
  new-group <name>            create a group (runs as ADMIN_ID unless -as is given)
  register <group> [code]     register the -as member
  unregister                  unregister the -as member
  publish <text>              publish an announcement as the -as member
  read                        show the -as member's group announcement
  clear                       clear the -as member's group announcement
`

func main() {
	as := flag.Int64("as", 0, "member id to act as")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := util.NewLogger("warn", cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	storage, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open storage", zap.Error(err))
		os.Exit(1)
	}
	defer storage.Close()

	actor := domain.MemberID(*as)
	if actor == 0 && flag.Arg(0) == "new-group" {
		actor = domain.MemberID(cfg.Directory.AdminID)
	}

	dir := app.NewDirectoryService(cfg, storage, nil, logger)
	if err := execute(ctx, dir, adapter.NewResponseFormatter(cfg.Bot.Prefix), actor, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "dirctl: %v\n", err)
		storage.Close()
		os.Exit(1)
	}
}

// execute runs one command and prints the formatted result to out.
func execute(ctx context.Context, dir *directory.Service, f *adapter.ResponseFormatter, actor domain.MemberID, args []string, out io.Writer) error {
	name, rest := args[0], args[1:]

	needsActor := map[string]bool{
		"register": true, "unregister": true, "publish": true, "read": true, "clear": true,
	}
	if needsActor[name] && actor == 0 {
		return fmt.Errorf("%s requires -as MEMBER_ID", name)
	}

	var (
		res    *domain.Result
		err    error
		render func(*domain.Result) string
	)

	switch name {
	case "groups":
		res, err = dir.ListGroups(ctx)
		render = f.FormatGroupList
	case "members":
		res, err = dir.ListAll(ctx)
		render = f.FormatMemberList
	case "new-group":
		if len(rest) == 0 {
			return fmt.Errorf("new-group requires a name")
		}
		res, err = dir.CreateGroup(ctx, directory.CreateGroupRequest{ActorID: actor, Name: strings.Join(rest, " ")})
		render = f.FormatCreateGroup
	case "register":
		if len(rest) == 0 {
			return fmt.Errorf("register requires a group")
		}
		req := directory.RegisterRequest{ActorID: actor, GroupName: rest[0]}
		if len(rest) > 1 {
			req.Credential = rest[1]
		}
		res, err = dir.Register(ctx, req)
		render = f.FormatRegister
	case "unregister":
		res, err = dir.Unregister(ctx, directory.UnregisterRequest{ActorID: actor})
		render = f.FormatUnregister
	case "publish":
		res, err = dir.PublishAnnouncement(ctx, directory.PublishRequest{ActorID: actor, Body: strings.Join(rest, " ")})
		render = f.FormatPublish
	case "read":
		res, err = dir.ReadAnnouncement(ctx, directory.ReadRequest{ActorID: actor})
		render = f.FormatAnnouncement
	case "clear":
		res, err = dir.ClearAnnouncement(ctx, directory.ClearRequest{ActorID: actor})
		render = f.FormatClear
	default:
		return fmt.Errorf("unknown command %q\n\n%s", name, usage)
	}

	if err != nil {
		return err
	}
	_, werr := fmt.Fprintln(out, render(res))
	return werr
}
