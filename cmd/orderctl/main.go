// orderctl is the terminal counterpart of the dispatch dashboard: it logs in
// to the order store, checks order status, and drives the confirmation flows.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alfajarsadiq/admincontrol/internal/access"
	"github.com/alfajarsadiq/admincontrol/internal/lifecycle"
	"github.com/alfajarsadiq/admincontrol/internal/session"
	"github.com/alfajarsadiq/admincontrol/pkg/models"
)

const usage = `Usage: orderctl <command> [flags]

Commands:
  login     -email -password            Log in to the order store
  logout                                Clear the local session
  status    <order-id>                  Show an order's current status
  dispatch  <order-id> -password -driver -vehicle
                                        Confirm dispatch of a Confirmed order
  deliver   <order-id> -password        Confirm delivery of a Dispatched order
  edit      <order-id> -password [-company] [-date] -items
                                        Replace an order's mutable fields
  delete    <order-id> -password        Delete an order
`

type app struct {
	sess       *session.Session
	client     *lifecycle.Client
	controller *lifecycle.Controller
	logger     *logrus.Logger
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if os.Getenv("ORDERCTL_DEBUG") == "" {
		logger.SetLevel(logrus.WarnLevel)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	sess, err := session.Load(sessionPath(), logger)
	if err != nil {
		fail("failed to load session: %v", err)
	}
	sess.OnTeardown(func() {
		fmt.Fprintln(os.Stderr, "Session expired. Please log in again.")
	})

	storeURL := getEnv("ORDER_STORE_URL", "http://localhost:8081")
	client := lifecycle.NewClient(storeURL, sess, logger)
	a := &app{
		sess:       sess,
		client:     client,
		controller: lifecycle.NewController(client, logger),
		logger:     logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "login":
		err = a.login(ctx, os.Args[2:])
	case "logout":
		err = a.logout()
	case "status":
		err = a.status(ctx, os.Args[2:])
	case "dispatch":
		err = a.dispatch(ctx, os.Args[2:])
	case "deliver":
		err = a.deliver(ctx, os.Args[2:])
	case "edit":
		err = a.edit(ctx, os.Args[2:])
	case "delete":
		err = a.delete(ctx, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fail("%v", err)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	profile, token, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := a.sess.Update(profile, token); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", profile.Name, profile.Role)
	return nil
}

func (a *app) logout() error {
	a.sess.Teardown()
	fmt.Println("Logged out")
	return nil
}

func (a *app) status(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("status: order id required")
	}
	order, err := a.controller.CheckStatus(ctx, args[0])
	if err != nil {
		return err
	}
	return printOrder(order)
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("dispatch: order id required")
	}
	fs := flag.NewFlagSet("dispatch", flag.ExitOnError)
	password := fs.String("password", "", "salesperson password")
	driver := fs.String("driver", "", "driver name")
	vehicle := fs.String("vehicle", "", "vehicle name")
	fs.Parse(args[1:])

	if err := a.require(access.ActionConfirmDispatch); err != nil {
		return err
	}
	order, err := a.controller.CheckStatus(ctx, args[0])
	if err != nil {
		return err
	}

	dialog := lifecycle.OpenDialog(time.Now())
	dialog.SetPassword(*password)
	dialog.SetDriverName(*driver)
	dialog.SetVehicleName(*vehicle)

	updated, err := a.controller.ConfirmDispatch(ctx, dialog, order)
	if err != nil {
		return err
	}
	return printOrder(updated)
}

func (a *app) deliver(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("deliver: order id required")
	}
	fs := flag.NewFlagSet("deliver", flag.ExitOnError)
	password := fs.String("password", "", "salesperson password")
	fs.Parse(args[1:])

	if err := a.require(access.ActionConfirmDelivery); err != nil {
		return err
	}
	order, err := a.controller.CheckStatus(ctx, args[0])
	if err != nil {
		return err
	}

	dialog := lifecycle.OpenDialog(time.Now())
	dialog.SetPassword(*password)

	updated, err := a.controller.ConfirmDelivery(ctx, dialog, order)
	if err != nil {
		return err
	}
	return printOrder(updated)
}

func (a *app) edit(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("edit: order id required")
	}
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	salesperson := fs.String("salesperson", "", "salesperson name on the order")
	password := fs.String("password", "", "salesperson password")
	company := fs.String("company", "", "new company name (unchanged if empty)")
	date := fs.String("date", "", "new delivery date (unchanged if empty)")
	items := fs.String("items", "", `replacement items as JSON, e.g. '[{"productId":"p1","qty":5}]'`)
	fs.Parse(args[1:])

	if err := a.require(access.ActionEditOrder); err != nil {
		return err
	}

	var selectors []models.ItemSelector
	if *items != "" {
		if err := json.Unmarshal([]byte(*items), &selectors); err != nil {
			return fmt.Errorf("edit: bad -items JSON: %w", err)
		}
	}

	updated, err := a.controller.EditOrder(ctx, args[0], models.EditRequest{
		SalespersonName:     *salesperson,
		SalespersonPassword: *password,
		CompanyName:         *company,
		DeliveryDate:        *date,
		UpdatedItems:        selectors,
	})
	if err != nil {
		return err
	}
	return printOrder(updated)
}

func (a *app) delete(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("delete: order id required")
	}
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	password := fs.String("password", "", "salesperson password")
	fs.Parse(args[1:])

	if err := a.require(access.ActionDeleteOrder); err != nil {
		return err
	}
	if err := a.controller.DeleteOrder(ctx, args[0], *password); err != nil {
		return err
	}
	fmt.Println("Order deleted")
	return nil
}

// require checks the logged-in profile's capability before any request goes
// out, mirroring what the dashboard hides from unauthorized roles.
func (a *app) require(action access.Action) error {
	if !a.sess.LoggedIn() {
		return fmt.Errorf("not logged in, run: orderctl login")
	}
	profile := a.sess.Profile()
	if !access.Allowed(profile.Role, action) {
		return fmt.Errorf("role %s is not authorized for this action", profile.Role)
	}
	return nil
}

func printOrder(order *models.Order) error {
	data, err := json.MarshalIndent(order, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func sessionPath() string {
	if p := os.Getenv("ORDERCTL_SESSION"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".orderctl-session.json"
	}
	return filepath.Join(home, ".orderctl", "session.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
