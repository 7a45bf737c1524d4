// Command stackcoin-cli is a small command line front end for the StackCoin
// ledger: balances, transfers, payment requests and listings.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/stackcoin/stackcoin-go/internal/config"
	"github.com/stackcoin/stackcoin-go/pkg/client"
	"github.com/stackcoin/stackcoin-go/pkg/logging"
)

func main() {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	sessionCfg := client.Config{
		BaseURL:   cfg.BaseURL,
		Token:     cfg.Token,
		UserAgent: cfg.UserAgent,
	}

	ctx := context.Background()
	err = client.WithSession(ctx, sessionCfg, func(ctx context.Context, s *client.Session) error {
		return run(ctx, s, os.Args[1], os.Args[2:])
	})
	if err != nil {
		logger.Error().Err(err).Str("command", os.Args[1]).Msg("Command failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, s *client.Session, command string, args []string) error {
	switch command {
	case "balance":
		if len(args) > 0 {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := s.UserBalance(ctx, id)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%d): %d STK\n", b.Username, b.UserID, b.Balance)
			return nil
		}
		b, err := s.SelfBalance(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%d): %d STK\n", b.Username, b.UserID, b.Balance)
		return nil

	case "send":
		if len(args) < 2 {
			return fmt.Errorf("usage: send <user-id> <amount> [label]")
		}
		to, err := parseID(args[0])
		if err != nil {
			return err
		}
		amount, err := parseID(args[1])
		if err != nil {
			return err
		}
		var label string
		if len(args) > 2 {
			label = args[2]
		}
		tx, err := s.Send(ctx, to, amount, label)
		if err != nil {
			return err
		}
		fmt.Printf("sent %d STK to user %d (transaction %d)\n", tx.Amount, tx.ToID, tx.ID)
		return nil

	case "request":
		if len(args) < 2 {
			return fmt.Errorf("usage: request <payer-id> <amount> [label]")
		}
		payer, err := parseID(args[0])
		if err != nil {
			return err
		}
		amount, err := parseID(args[1])
		if err != nil {
			return err
		}
		var label string
		if len(args) > 2 {
			label = args[2]
		}
		pr, err := s.RequestPayment(ctx, payer, amount, label)
		if err != nil {
			return err
		}
		fmt.Printf("requested %d STK from user %d (request %d, %s)\n",
			pr.Amount, pr.PayerID, pr.ID, pr.Status)
		return nil

	case "accept", "deny":
		if len(args) < 1 {
			return fmt.Errorf("usage: %s <request-id>", command)
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		var pr client.PaymentRequest
		if command == "accept" {
			pr, err = s.AcceptRequest(ctx, id)
		} else {
			pr, err = s.DenyRequest(ctx, id)
		}
		if err != nil {
			return err
		}
		fmt.Printf("request %d is now %s\n", pr.ID, pr.Status)
		return nil

	case "transactions":
		stream := s.StreamTransactions(client.TransactionListOptions{})
		for stream.Next(ctx) {
			tx := stream.Item()
			fmt.Printf("%d\t%d -> %d\t%d STK\t%s\n", tx.ID, tx.FromID, tx.ToID, tx.Amount, tx.Label)
		}
		return stream.Err()

	case "requests":
		stream := s.StreamRequests(client.RequestListOptions{Status: client.RequestPending})
		for stream.Next(ctx) {
			pr := stream.Item()
			fmt.Printf("%d\t%d asks %d\t%d STK\t%s\n",
				pr.ID, pr.RequesterID, pr.PayerID, pr.Amount, pr.Status)
		}
		return stream.Err()

	case "users":
		stream := s.StreamUsers(client.UserListOptions{})
		for stream.Next(ctx) {
			u := stream.Item()
			flags := ""
			if u.Admin {
				flags += " [admin]"
			}
			if u.Banned {
				flags += " [banned]"
			}
			fmt.Printf("%d\t%s%s\n", u.ID, u.Username, flags)
		}
		return stream.Err()

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return id, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: stackcoin-cli <command> [args]

commands:
  balance [user-id]              show a balance (own balance without args)
  send <user-id> <amount> [label]
  request <payer-id> <amount> [label]
  accept <request-id>
  deny <request-id>
  transactions                   stream own transactions
  requests                       stream pending payment requests
  users                          stream all users`)
}
