package client

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/term"

	"neontask/internal/domain"
)

var (
	ErrUsage       = errors.New("usage")
	ErrNotLoggedIn = errors.New("NOT LOGGED IN: RUN `neontask login` FIRST")
)

const usage = `neontask <command> [flags]

  register [-email E] [-handle H] [-password P]
  login    [-email E] [-password P]
  logout
  list     [-status S] [-priority P]
  add      -title T [-desc D] [-priority P] [-due YYYY-MM-DD]
  advance  <id>                      STANDBY -> IN_PROGRESS -> EXECUTED -> STANDBY
  set      <id> [-title T] [-desc D] [-status S] [-priority P] [-due YYYY-MM-DD]
  rm       <id>
  health
`

// 客户端新建任务的默认优先级
const defaultPriority = string(domain.PriorityMedium)

type App struct {
	api     *API
	session *Session
	in      *bufio.Reader
	out     io.Writer

	// 测试里替换，避免依赖真实终端
	readPassword func(fd int) ([]byte, error)
}

func NewApp(api *API, s *Session, in io.Reader, out io.Writer) *App {
	api.SetToken(s.Token())
	return &App{api: api, session: s, in: bufio.NewReader(in), out: out, readPassword: term.ReadPassword}
}

func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout()
	case "list", "ls":
		return a.list(ctx, rest)
	case "add":
		return a.add(ctx, rest)
	case "advance":
		return a.advance(ctx, rest)
	case "set":
		return a.set(ctx, rest)
	case "rm", "delete":
		return a.remove(ctx, rest)
	case "health":
		return a.health(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	}
	fmt.Fprint(a.out, usage)
	return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	email := fs.String("email", "", "email")
	handle := fs.String("handle", "", "operator handle")
	password := fs.String("password", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var err error
	if *email, err = a.orPrompt(*email, "EMAIL"); err != nil {
		return err
	}
	if *handle, err = a.orPrompt(*handle, "HANDLE"); err != nil {
		return err
	}
	if *password, err = a.orPassword(*password); err != nil {
		return err
	}

	res, err := a.api.Register(ctx, *email, *password, *handle)
	if err != nil {
		return err
	}
	return a.remember(res)
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var err error
	if *email, err = a.orPrompt(*email, "EMAIL"); err != nil {
		return err
	}
	if *password, err = a.orPassword(*password); err != nil {
		return err
	}

	res, err := a.api.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	return a.remember(res)
}

func (a *App) remember(res *AuthResponse) error {
	if err := a.session.Save(res.Token, res.User.Handle); err != nil {
		return err
	}
	a.api.SetToken(res.Token)
	fmt.Fprintf(a.out, "%s\nWELCOME, %s\n", res.Message, res.User.Handle)
	return nil
}

func (a *App) logout() error {
	if err := a.session.Clear(); err != nil {
		return err
	}
	a.api.SetToken("")
	fmt.Fprintln(a.out, "SESSION TERMINATED")
	return nil
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := a.flags("list")
	status := fs.String("status", "", "STANDBY | IN_PROGRESS | EXECUTED")
	priority := fs.String("priority", "", "LOW | MEDIUM | HIGH | CRITICAL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}
	// 状态过滤在本地做，统计栏始终反映全部任务
	all, err := call(a, func() ([]domain.Task, error) {
		return a.api.ListTasks(ctx, "", strings.ToUpper(*priority))
	})
	if err != nil {
		return err
	}
	if h := a.session.Handle(); h != "" {
		fmt.Fprintf(a.out, "OPERATOR: %s\n", h)
	}
	return RenderDashboard(a.out, all, FilterStatus(all, strings.ToUpper(*status)))
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := a.flags("add")
	title := fs.String("title", "", "title (required)")
	desc := fs.String("desc", "", "description")
	priority := fs.String("priority", defaultPriority, "LOW | MEDIUM | HIGH | CRITICAL")
	due := fs.String("due", "", "due date, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*title) == "" {
		if len(fs.Args()) == 0 {
			return fmt.Errorf("%w: add -title T", ErrUsage)
		}
		*title = strings.Join(fs.Args(), " ")
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	in := NewTask{Title: *title, Priority: strings.ToUpper(*priority)}
	if *desc != "" {
		in.Description = desc
	}
	if *due != "" {
		in.DueDate = due
	}
	t, err := call(a, func() (*domain.Task, error) { return a.api.CreateTask(ctx, in) })
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "OPERATION CREATED: %s [%s] %s\n", t.ID, t.Priority, t.Title)
	return nil
}

func (a *App) advance(ctx context.Context, args []string) error {
	id, _, err := splitID("advance", args)
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}
	all, err := call(a, func() ([]domain.Task, error) { return a.api.ListTasks(ctx, "", "") })
	if err != nil {
		return err
	}
	var cur *domain.Task
	for i := range all {
		if all[i].ID == id {
			cur = &all[i]
			break
		}
	}
	if cur == nil {
		return &APIError{Status: http.StatusNotFound, Message: domain.MsgTaskNotFound}
	}

	next := string(cur.Status.Next())
	t, err := call(a, func() (*domain.Task, error) {
		return a.api.UpdateTask(ctx, id, TaskPatch{Status: &next})
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s -> %s\n", t.ID, cur.Status, t.Status)
	return nil
}

func (a *App) set(ctx context.Context, args []string) error {
	id, rest, err := splitID("set", args)
	if err != nil {
		return err
	}
	fs := a.flags("set")
	var p TaskPatch
	fs.Func("title", "new title", func(s string) error { p.Title = &s; return nil })
	fs.Func("desc", "new description, empty clears it", func(s string) error { p.Description = &s; return nil })
	fs.Func("status", "STANDBY | IN_PROGRESS | EXECUTED", func(s string) error { s = strings.ToUpper(s); p.Status = &s; return nil })
	fs.Func("priority", "LOW | MEDIUM | HIGH | CRITICAL", func(s string) error { s = strings.ToUpper(s); p.Priority = &s; return nil })
	fs.Func("due", "due date YYYY-MM-DD, empty clears it", func(s string) error { p.DueDate = &s; return nil })
	if err := fs.Parse(rest); err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}

	t, err := call(a, func() (*domain.Task, error) { return a.api.UpdateTask(ctx, id, p) })
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "OPERATION UPDATED: %s [%s] %s %s\n", t.ID, t.Priority, t.Status, t.Title)
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	id, _, err := splitID("rm", args)
	if err != nil {
		return err
	}
	if err := a.requireLogin(); err != nil {
		return err
	}
	if _, err := call(a, func() (struct{}, error) { return struct{}{}, a.api.DeleteTask(ctx, id) }); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "OPERATION TERMINATED: %s\n", id)
	return nil
}

func (a *App) health(ctx context.Context) error {
	h, err := a.api.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s  %s  DATABASE %s  %s\n", h.System, h.Status, h.Database, h.Timestamp)
	return nil
}

func (a *App) requireLogin() error {
	if a.session.Token() == "" {
		return ErrNotLoggedIn
	}
	return nil
}

// call 401 时清掉本地会话，下次需要重新登录
func call[T any](a *App, fn func() (T, error)) (T, error) {
	v, err := fn()
	if err != nil && IsUnauthorized(err) {
		_ = a.session.Clear()
		a.api.SetToken("")
	}
	return v, err
}

func (a *App) orPrompt(v, label string) (string, error) {
	if v != "" {
		return v, nil
	}
	fmt.Fprintf(a.out, "%s> ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *App) orPassword(v string) (string, error) {
	if v != "" {
		return v, nil
	}
	fmt.Fprint(a.out, "PASSWORD> ")
	pw, err := a.readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// splitID "<id> [flags]"：flag 包遇到第一个非 flag 参数就停止，所以 id 单独取
func splitID(cmd string, args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%w: %s <id>", ErrUsage, cmd)
	}
	return args[0], args[1:], nil
}
