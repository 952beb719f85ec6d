package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/attendance-agent/internal/api"
	"github.com/spec-kit/attendance-agent/internal/config"
	"github.com/spec-kit/attendance-agent/internal/domain"
	"github.com/spec-kit/attendance-agent/internal/events"
	"github.com/spec-kit/attendance-agent/internal/geo"
	"github.com/spec-kit/attendance-agent/internal/geoloc"
	"github.com/spec-kit/attendance-agent/internal/notify"
	"github.com/spec-kit/attendance-agent/internal/observability"
	"github.com/spec-kit/attendance-agent/internal/service"
	"github.com/spec-kit/attendance-agent/internal/session"
	apperrors "github.com/spec-kit/attendance-agent/pkg/util/errorutil"
)

const usage = `usage: attendance-agent <command> [flags]

user commands:
  login         -email -password
  signup        -name -email -password -register -department
  logout
  whoami
  mark          [-lat -lon]
  watch         [-lat -lon | -fixes file [-interval dur]] [-mark]
  history
  leave         -start -end -reason
  leave-status
  messages

admin commands:
  report        [-register N | -department D | -all]
  leave-pending
  leave-review  -id -status Approved|Rejected
  message       -user -text
  delete-user   -user
`

// app bundles the wired services every command draws from.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	client     *api.Client
	store      *session.Store
	guard      *session.Guard
	dispatcher events.Dispatcher
	notifier   *notify.Notifier

	auth       *service.AuthService
	attendance *service.AttendanceService
	leave      *service.LeaveService
	messages   *service.MessageService
	admin      *service.AdminService
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	location, err := cfg.App.Location()
	if err != nil {
		logger.Fatal("invalid timezone", zap.String("tz", cfg.App.TimeZone), zap.Error(err))
	}

	metrics := observability.NewMetrics()
	client := api.NewClient(cfg.API, logger, metrics)
	store := session.NewStore(cfg.Session.FilePath)
	dispatcher := events.NewInMemoryDispatcher()
	guard := session.NewGuard(store, dispatcher, logger)

	notifier := notify.NewNotifier(cfg.Notify.TTL(), logger)
	notifier.RegisterHandlers(dispatcher)
	defer notifier.Close()

	a := &app{
		cfg:        cfg,
		logger:     logger,
		client:     client,
		store:      store,
		guard:      guard,
		dispatcher: dispatcher,
		notifier:   notifier,

		auth:       service.NewAuthService(client, store, guard, logger),
		attendance: service.NewAttendanceService(client, guard, dispatcher, logger, cfg.API.SubmitTimeout(), location),
		leave:      service.NewLeaveService(client, guard, dispatcher, logger),
		messages:   service.NewMessageService(client, guard),
		admin:      service.NewAdminService(client, guard, logger),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		var clientErr *apperrors.ClientError
		if errors.As(err, &clientErr) {
			fmt.Fprintf(os.Stderr, "error [%s]: %s\n", clientErr.Code, clientErr.Message)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "signup":
		return a.cmdSignup(ctx, args)
	case "logout":
		return a.cmdLogout(args)
	case "whoami":
		return a.cmdWhoami(args)
	case "mark":
		return a.cmdMark(ctx, args)
	case "watch":
		return a.cmdWatch(ctx, args)
	case "history":
		return a.cmdHistory(ctx, args)
	case "leave":
		return a.cmdLeave(ctx, args)
	case "leave-status":
		return a.cmdLeaveStatus(ctx, args)
	case "messages":
		return a.cmdMessages(ctx, args)
	case "report":
		return a.cmdReport(ctx, args)
	case "leave-pending":
		return a.cmdLeavePending(ctx, args)
	case "leave-review":
		return a.cmdLeaveReview(ctx, args)
	case "message":
		return a.cmdSendMessage(ctx, args)
	case "delete-user":
		return a.cmdDeleteUser(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := a.auth.Login(ctx, service.LoginInput{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s, %s)\n", sess.Name, sess.RegisterNumber, sess.Role)
	return nil
}

func (a *app) cmdSignup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	register := fs.String("register", "", "register number")
	department := fs.String("department", "", "department")
	if err := fs.Parse(args); err != nil {
		return err
	}

	err := a.auth.Register(ctx, service.SignupInput{
		Name:           *name,
		Email:          *email,
		Password:       *password,
		RegisterNumber: *register,
		Department:     *department,
	})
	if err != nil {
		return err
	}
	fmt.Println("account created, log in to continue")
	return nil
}

func (a *app) cmdLogout(args []string) error {
	if err := a.auth.Logout(); err != nil {
		return err
	}
	fmt.Println("logged out")
	return nil
}

func (a *app) cmdWhoami(args []string) error {
	sess, err := a.auth.CurrentSession()
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%s\t%s\t%s\n", sess.Name, sess.RegisterNumber, sess.Department, sess.Role)
	return nil
}

func (a *app) cmdMark(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mark", flag.ExitOnError)
	lat := fs.Float64("lat", 0, "current latitude")
	lon := fs.Float64("lon", 0, "current longitude")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rec, err := a.attendance.Submit(ctx, geo.WithinRadius(*lat, *lon))
	if err != nil {
		return err
	}
	fmt.Printf("marked %s for %s\n", rec.Status, rec.DateOnly)
	return nil
}

func (a *app) cmdWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	lat := fs.Float64("lat", 0, "static latitude")
	lon := fs.Float64("lon", 0, "static longitude")
	fixesPath := fs.String("fixes", "", "JSON-lines file of position fixes to replay")
	interval := fs.Duration("interval", time.Second, "delay between replayed fixes")
	markOnEntry := fs.Bool("mark", false, "submit attendance the first time the geofence is entered")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var src geoloc.Source
	if *fixesPath != "" {
		f, err := os.Open(*fixesPath)
		if err != nil {
			return fmt.Errorf("open fixes file: %w", err)
		}
		defer f.Close()
		src = geoloc.ReplaySource{Reader: f, Interval: *interval, Logger: a.logger}
	} else {
		src = geoloc.StaticSource{Latitude: *lat, Longitude: *lon}
	}

	watcher := geoloc.NewWatcher(src, a.dispatcher, a.logger)

	marked := make(chan bool, 1)
	sub, err := watcher.Start(func(eligible bool) {
		fmt.Printf("eligibility: %t\n", eligible)
		if eligible && *markOnEntry {
			select {
			case marked <- true:
			default:
			}
		}
	})
	if err != nil {
		return err
	}
	defer sub.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-marked:
			rec, err := a.attendance.Submit(ctx, true)
			if err != nil {
				fmt.Fprintf(os.Stderr, "mark failed: %s\n", apperrors.ToClientError(err).Message)
				continue
			}
			fmt.Printf("marked %s for %s\n", rec.Status, rec.DateOnly)
		case <-sub.Done():
			a.logger.Info("position stream ended")
			return nil
		case sig := <-sigCh:
			a.logger.Info("shutting down", zap.String("signal", sig.String()))
			return nil
		}
	}
}

func (a *app) cmdHistory(ctx context.Context, args []string) error {
	records, err := a.attendance.History(ctx)
	if err != nil {
		return err
	}
	return printRecords(records)
}

func (a *app) cmdLeave(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("leave", flag.ExitOnError)
	start := fs.String("start", "", "start date (YYYY-MM-DD)")
	end := fs.String("end", "", "end date (YYYY-MM-DD)")
	reason := fs.String("reason", "", "reason for leave")
	if err := fs.Parse(args); err != nil {
		return err
	}

	err := a.leave.Request(ctx, service.LeaveInput{StartDate: *start, EndDate: *end, Reason: *reason})
	if err != nil {
		return err
	}
	fmt.Printf("leave requested from %s to %s\n", *start, *end)
	return nil
}

func (a *app) cmdLeaveStatus(ctx context.Context, args []string) error {
	leave, err := a.leave.RecentStatus(ctx)
	if err != nil {
		return err
	}
	if leave == nil {
		fmt.Println("no leave requests on record")
		return nil
	}
	fmt.Printf("%s to %s\t%s\t%s\n", leave.StartDate, leave.EndDate, leave.Reason, leave.Status)
	return nil
}

func (a *app) cmdMessages(ctx context.Context, args []string) error {
	msgs, err := a.messages.Inbox(ctx)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Println("no messages")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, m := range msgs {
		fmt.Fprintf(w, "%s\t%s\n", m.SentAt.Format(time.RFC3339), m.Body)
	}
	return w.Flush()
}

func (a *app) cmdReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	register := fs.String("register", "", "report one student by register number")
	department := fs.String("department", "", "report one department")
	all := fs.Bool("all", false, "report the full dataset")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		records []domain.AttendanceRecord
		err     error
	)
	switch {
	case *register != "":
		records, err = a.admin.StudentReport(ctx, *register)
	case *department != "":
		records, err = a.admin.DepartmentReport(ctx, *department)
	case *all:
		records, err = a.admin.AllAttendance(ctx)
	default:
		records, err = a.admin.TodayReport(ctx)
	}
	if err != nil {
		return err
	}
	return printRecords(records)
}

func (a *app) cmdLeavePending(ctx context.Context, args []string) error {
	leaves, err := a.admin.PendingLeaves(ctx)
	if err != nil {
		return err
	}
	if len(leaves) == 0 {
		fmt.Println("no pending leave requests")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREGISTER\tSTART\tEND\tREASON")
	for _, l := range leaves {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", l.ID, l.RegisterNumber, l.StartDate, l.EndDate, l.Reason)
	}
	return w.Flush()
}

func (a *app) cmdLeaveReview(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("leave-review", flag.ExitOnError)
	id := fs.String("id", "", "leave request id")
	status := fs.String("status", "", "Approved or Rejected")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.admin.ReviewLeave(ctx, *id, domain.LeaveStatus(*status)); err != nil {
		return err
	}
	fmt.Printf("leave %s %s\n", *id, *status)
	return nil
}

func (a *app) cmdSendMessage(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("message", flag.ExitOnError)
	user := fs.String("user", "", "recipient user id")
	text := fs.String("text", "", "message text")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.admin.SendMessage(ctx, *user, *text); err != nil {
		return err
	}
	fmt.Println("message sent")
	return nil
}

func (a *app) cmdDeleteUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete-user", flag.ExitOnError)
	user := fs.String("user", "", "user id to delete")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.admin.DeleteUser(ctx, *user); err != nil {
		return err
	}
	fmt.Println("user deleted")
	return nil
}

func printRecords(records []domain.AttendanceRecord) error {
	if len(records) == 0 {
		fmt.Println("no records")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tNAME\tREGISTER\tDEPARTMENT\tSTATUS")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.DateOnly, r.Name, r.RegisterNumber, r.Department, r.Status)
	}
	return w.Flush()
}
