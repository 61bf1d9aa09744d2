package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"storefront/internal/api"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/localstore"
	"storefront/internal/state"
)

const usage = `Usage: shop <command> [args]

Commands:
  products                 list the catalog
  product <id>             show one product
  cart                     show the cart
  add <product-id> [n]     add a product to the cart
  set <product-id> <n>     set an absolute quantity (0 removes)
  remove <product-id>      remove a product from the cart
  clear                    empty the cart
  register <email>         create an account
  login <email>            log in and merge the guest cart
  logout                   log out (the cart stays on the server)
  whoami                   show the current identity
  checkout <address> [tel] place an order from the cart
  orders                   list past orders
  order <id>               show one order

Environment:
  API_BASE_URL   backend address (default http://localhost:8000)
  STATE_DIR      where the token and guest cart live
  SHOP_PASSWORD  password for register/login (prompted when unset)
  SHOP_CURRENCY  "shmeckles" (default) or "flurbos"
`

type app struct {
	client *api.Client
	auth   *state.Auth
	cart   *state.Cart
	logger *log.Logger

	flurbos bool
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stderr, "[shop] ", log.LstdFlags)

	store := localstore.New(cfg.StateDir, logger)
	client := api.New(cfg.APIBaseURL, store, logger)
	auth := state.NewAuth(client, store, logger)
	cart := state.NewCart(client, store, auth, logger)
	cart.Bind(auth)

	ctx := context.Background()
	auth.Resolve(ctx)
	if err := cart.Refresh(ctx); err != nil {
		logger.Printf("refresh cart: %v", err)
	}

	a := &app{
		client:  client,
		auth:    auth,
		cart:    cart,
		logger:  logger,
		flurbos: os.Getenv("SHOP_CURRENCY") == "flurbos",
	}

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			auth.SessionExpired()
			fmt.Fprintln(os.Stderr, "session expired, please log in again")
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "products":
		return a.listProducts(ctx)
	case "product":
		id, err := argID(args, "product id")
		if err != nil {
			return err
		}
		return a.showProduct(ctx, id)
	case "cart":
		return a.showCart()
	case "add":
		return a.addToCart(ctx, args)
	case "set":
		return a.setQuantity(ctx, args)
	case "remove":
		id, err := argID(args, "product id")
		if err != nil {
			return err
		}
		return a.cart.Remove(ctx, id)
	case "clear":
		a.cart.Clear()
		return nil
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.auth.Logout()
		fmt.Println("logged out")
		return nil
	case "whoami":
		return a.whoami()
	case "checkout":
		return a.checkout(ctx, args)
	case "orders":
		return a.listOrders(ctx)
	case "order":
		id, err := argID(args, "order id")
		if err != nil {
			return err
		}
		return a.showOrder(ctx, id)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) listProducts(ctx context.Context) error {
	products, err := a.client.ListProducts(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		fmt.Printf("%4d  %-40s %s\n", p.ID, p.Name, a.price(p.PriceShmeckles, p.PriceFlurbos))
	}
	return nil
}

func (a *app) showProduct(ctx context.Context, id int64) error {
	p, err := a.client.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("product %d not found", id)
		}
		return err
	}
	fmt.Printf("%s\n%s\n%s\n", p.Name, p.Description, a.price(p.PriceShmeckles, p.PriceFlurbos))
	if p.Category != nil {
		fmt.Printf("category: %s\n", p.Category.Name)
	}
	return nil
}

func (a *app) showCart() error {
	lines := a.cart.Lines()
	if len(lines) == 0 {
		fmt.Println("cart is empty")
		return nil
	}
	for _, line := range lines {
		marker := " "
		if line.Pending {
			marker = "~"
		}
		fmt.Printf("%s %4d  %-40s x%-3d %s\n", marker, line.Product.ID, line.Product.Name,
			line.Quantity, a.price(line.Product.PriceShmeckles, line.Product.PriceFlurbos))
	}
	fmt.Printf("total: %s (%d items)\n", a.price(a.cart.TotalShmeckles(), a.cart.TotalFlurbos()), a.cart.TotalQuantity())
	return nil
}

func (a *app) addToCart(ctx context.Context, args []string) error {
	id, err := argID(args, "product id")
	if err != nil {
		return err
	}
	n := 1
	if len(args) > 1 {
		if n, err = strconv.Atoi(args[1]); err != nil || n < 1 {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
	}
	product, err := a.client.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("product %d not found", id)
		}
		return err
	}
	if err := a.cart.Add(ctx, *product); err != nil {
		return err
	}
	if n > 1 {
		for _, line := range a.cart.Lines() {
			if line.Product.ID == id {
				return a.cart.SetQuantity(ctx, id, line.Quantity+n-1)
			}
		}
	}
	return nil
}

func (a *app) setQuantity(ctx context.Context, args []string) error {
	id, err := argID(args, "product id")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return errors.New("missing quantity")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}
	return a.cart.SetQuantity(ctx, id, n)
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("missing email")
	}
	password, err := readPassword()
	if err != nil {
		return err
	}
	user, err := a.auth.Register(ctx, args[0], password)
	if err != nil {
		return err
	}
	fmt.Printf("registered %s, now log in\n", user.Email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("missing email")
	}
	password, err := readPassword()
	if err != nil {
		return err
	}
	if err := a.auth.Login(ctx, args[0], password); err != nil {
		return err
	}
	fmt.Printf("logged in as %s\n", args[0])
	return nil
}

func (a *app) whoami() error {
	user := a.auth.Current()
	if user == nil {
		fmt.Println("guest")
		return nil
	}
	fmt.Println(user.Email)
	return nil
}

func (a *app) checkout(ctx context.Context, args []string) error {
	if !a.auth.Authenticated() {
		return errors.New("log in before checkout")
	}
	if len(args) < 1 {
		return errors.New("missing delivery address")
	}
	phone := ""
	if len(args) > 1 {
		phone = args[1]
	}
	order, err := a.client.CreateOrder(ctx, args[0], phone)
	if err != nil {
		return err
	}
	if err := a.cart.Refresh(ctx); err != nil {
		a.logger.Printf("refresh cart: %v", err)
	}
	fmt.Printf("order %d placed, total %s\n", order.ID, a.price(order.TotalPrice, 0))
	return nil
}

func (a *app) listOrders(ctx context.Context) error {
	orders, err := a.client.ListOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("no orders yet")
		return nil
	}
	for _, o := range orders {
		fmt.Printf("%4d  %-10s %s  %s\n", o.ID, o.Status, o.CreatedAt.Format("2006-01-02"), a.price(o.TotalPrice, 0))
	}
	return nil
}

func (a *app) showOrder(ctx context.Context, id int64) error {
	o, err := a.client.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("order %d not found", id)
		}
		return err
	}
	fmt.Printf("order %d (%s)\n", o.ID, o.Status)
	for _, item := range o.Items {
		fmt.Printf("  %-40s x%-3d %s\n", item.ProductName, item.Quantity, a.price(item.PriceShmeckles, item.PriceFlurbos))
	}
	fmt.Printf("delivery: %s\ntotal: %s\n", o.DeliveryAddress, a.price(o.TotalPrice, 0))
	return nil
}

// price renders an amount in the selected currency. Orders store totals
// in shmeckles only, so a zero flurbo amount falls back to the exchange
// rate.
func (a *app) price(shmeckles, flurbos float64) string {
	if a.flurbos {
		if flurbos == 0 {
			flurbos = shmeckles / 100
		}
		return fmt.Sprintf("%.2f flurbos", flurbos)
	}
	return fmt.Sprintf("%.0f shmeckles", shmeckles)
}

func argID(args []string, what string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("missing %s", what)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return id, nil
}

func readPassword() (string, error) {
	if p := os.Getenv("SHOP_PASSWORD"); p != "" {
		return p, nil
	}
	fmt.Fprint(os.Stderr, "password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
