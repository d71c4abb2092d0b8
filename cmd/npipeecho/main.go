//go:build windows

// Command npipeecho is a minimal demonstration of the framed message layer:
// run with -listen to bind a name and echo back every message a client
// sends, or without it to connect, send each stdin line to the server and
// print its replies. It exists to exercise npipe end-to-end; process lifetime,
// flag parsing, and logging here are explicitly outside the core library's
// scope (spec §1) and belong to this one small consumer only.
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"

	"github.com/go-ipc/npipe"
)

func main() {
	name := flag.String("name", "npipeecho", "pipe name")
	listen := flag.Bool("listen", false, "run as the server, echoing back every message received")
	flag.Parse()

	ctx := context.Background()

	if *listen {
		runServer(ctx, *name)
		return
	}
	runClient(ctx, *name)
}

func runServer(ctx context.Context, name string) {
	server, err := npipe.NewMessageServer(name, nil)
	if err != nil {
		log.Fatalf("listen %s: %v", name, err)
	}
	log.Printf("listening on %s", server.Addr())

	for {
		conn, next, err := server.WaitForConnection(ctx)
		if err != nil {
			log.Fatalf("accept: %v", err)
		}
		server = next
		go echo(conn)
	}
}

func echo(conn *npipe.MessageConnection) {
	defer conn.Close()
	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			log.Printf("read: %v", err)
			return
		}
		if err := conn.WriteMessage(msg); err != nil {
			log.Printf("write: %v", err)
			return
		}
	}
}

func runClient(ctx context.Context, name string) {
	conn, err := npipe.DialMessage(ctx, name)
	if err != nil {
		log.Fatalf("dial %s: %v", name, err)
	}
	defer conn.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Bytes()
		if err := conn.WriteMessage(line); err != nil {
			log.Fatalf("write: %v", err)
		}
		reply, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("read: %v", err)
		}
		os.Stdout.Write(reply)
		os.Stdout.Write([]byte("\n"))
	}
}
