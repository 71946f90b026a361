// Command pumlgen parses PlantUML class diagrams and generates code,
// SQL schemas and GraphQL schemas from them.
//
//	pumlgen generate shop.puml -o out -p com.example.shop
//	pumlgen generate shop.puml out com.example.shop
//	pumlgen check diagrams/*.puml
//	pumlgen ddl shop.puml --dialect sqlite
//	pumlgen migrate shop.puml --dsn "$DATABASE_URL"
//	pumlgen watch shop.puml -o out
//	pumlgen serve --addr :8080
//	pumlgen mcp
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "pumlgen:", err)
		stop()
		os.Exit(1)
	}
}
