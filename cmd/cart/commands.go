package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"shopcart/internal/application/checkout"
	"shopcart/internal/domain/catalog"
	"shopcart/internal/infrastructure/encoding/csvexport"
)

const usage = `usage: cart <command> [flags]

commands:
  products [--search QUERY]           list or search the catalog
  add ID [--qty N]                    add a product to the cart
  remove ID                           remove a product from the cart
  set ID N                            set a quantity (0 removes the line)
  clear                               empty the cart
  show                                show the cart and its totals
  save                                write the cart snapshot
  load                                reload the cart snapshot
  checkout --buyer NAME [--export-invoice FILE]
  orders                              list placed orders
  export cart|ledger|order ID [--out FILE]
`

var errUsage = errors.New("invalid usage")

func run(ctx context.Context, svc *checkout.Service, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.SetOutput(out)

	switch cmd {
	case "products":
		search := fs.StringP("search", "s", "", "case-insensitive name or id filter")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		products := svc.Products()
		if *search != "" {
			found, err := svc.SearchProducts(*search)
			if err != nil {
				return err
			}
			products = found
		}
		printProducts(out, products)
		return nil

	case "add":
		qty := fs.IntP("qty", "q", 1, "quantity to add")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		id, err := oneArg(fs, cmd, "product id")
		if err != nil {
			return err
		}
		if err := svc.AddToCart(ctx, id, *qty); err != nil {
			return err
		}
		return show(out, svc)

	case "remove":
		if err := fs.Parse(rest); err != nil {
			return err
		}
		id, err := oneArg(fs, cmd, "product id")
		if err != nil {
			return err
		}
		svc.RemoveFromCart(ctx, id)
		return show(out, svc)

	case "set":
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if fs.NArg() != 2 {
			return fmt.Errorf("%w: set needs a product id and a quantity", errUsage)
		}
		qty, err := strconv.Atoi(fs.Arg(1))
		if err != nil {
			return fmt.Errorf("%w: quantity %q is not a number", errUsage, fs.Arg(1))
		}
		if err := svc.SetQuantity(ctx, fs.Arg(0), qty); err != nil {
			return err
		}
		return show(out, svc)

	case "clear":
		svc.ClearCart(ctx)
		return show(out, svc)

	case "show":
		return show(out, svc)

	case "save":
		if err := svc.SaveCartNow(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, svc.Status())
		return nil

	case "load":
		err := svc.LoadCartNow(ctx)
		fmt.Fprintln(out, svc.Status())
		if err != nil {
			return err
		}
		return show(out, svc)

	case "checkout":
		buyer := fs.StringP("buyer", "b", "", "buyer name")
		invoiceFile := fs.String("export-invoice", "", "write the order invoice CSV to FILE")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		receipt, err := svc.Checkout(ctx, *buyer)
		if err != nil {
			return err
		}
		fmt.Fprint(out, receipt.Summary)
		fmt.Fprintf(out, "\nOrder placed: %s\n", receipt.Order.ID)
		if *invoiceFile != "" {
			body, err := svc.ExportOrder(receipt.Order.ID)
			if err != nil {
				return err
			}
			if err := os.WriteFile(*invoiceFile, []byte(body), 0o644); err != nil {
				return fmt.Errorf("write invoice: %w", err)
			}
			fmt.Fprintf(out, "Invoice exported to %s\n", *invoiceFile)
		}
		return nil

	case "orders":
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ORDER\tBUYER\tDATE\tITEMS\tTOTAL")
		for _, o := range svc.Orders() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", o.ID, o.Buyer, o.PlacedAt.Format(csvexport.DateLayout), len(o.Items()), o.ItemsTotal().StringFixed(2))
		}
		return tw.Flush()

	case "export":
		dest := fs.StringP("out", "o", "", "write to FILE instead of stdout")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		body, err := export(svc, fs.Args())
		if err != nil {
			return err
		}
		if *dest == "" {
			_, err := io.WriteString(out, body)
			return err
		}
		if err := os.WriteFile(*dest, []byte(body), 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(out, "Exported to %s\n", *dest)
		return nil

	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	}

	fmt.Fprint(out, usage)
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func export(svc *checkout.Service, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: export needs cart, ledger or order ID", errUsage)
	}
	switch args[0] {
	case "cart":
		return svc.ExportCart(), nil
	case "ledger":
		return svc.ExportLedger(), nil
	case "order":
		if len(args) != 2 {
			return "", fmt.Errorf("%w: export order needs an order id", errUsage)
		}
		return svc.ExportOrder(args[1])
	}
	return "", fmt.Errorf("%w: unknown export %q", errUsage, args[0])
}

func oneArg(fs *pflag.FlagSet, cmd, what string) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%w: %s needs a %s", errUsage, cmd, what)
	}
	return strings.TrimSpace(fs.Arg(0)), nil
}

func printProducts(out io.Writer, products []catalog.Product) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(2))
	}
	tw.Flush()
}

func show(out io.Writer, svc *checkout.Service) error {
	view := svc.CartView()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tUNIT\tSUBTOTAL")
	for _, l := range view.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", l.ProductID, l.Name, l.Quantity, l.UnitPrice.StringFixed(2), l.Subtotal().StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	inv := view.Invoice
	fmt.Fprintf(out, "\nSubtotal: %s  Tax: %s  Shipping: %s  Grand Total: %s\n",
		inv.Subtotal.StringFixed(2), inv.Tax.StringFixed(2), inv.Shipping.StringFixed(2), inv.GrandTotal.StringFixed(2))
	return nil
}
