// Command local-dev-dependencies runs a Postgres container in the background
// for local development and writes an env file the server can load with:
//
//	employee-reviews serve --env-file tmp/postgres.env
//
// Subcommands: stop, playwright. Signals to a running daemon are sent with -s quit|stop.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/playwright-community/playwright-go"
	"github.com/sevlyar/go-daemon"

	"github.com/gaqzi/employee-reviews/test"
)

const (
	healthcheckEnvName = "HEALTHCHECK_ADDR"
	envFile            = "tmp/postgres.env"
	startTimeout       = 2 * time.Minute
)

var (
	signalFlag = flag.String("s", "", `Send signal to the daemon:
  quit — graceful shutdown
  stop — fast shutdown`)

	postgresUp atomic.Bool
	stopChan   = make(chan struct{})
	doneChan   = make(chan struct{})
)

func main() {
	flag.Parse()
	ctx, cancel := context.WithCancel(context.Background())
	daemon.AddCommand(daemon.StringFlag(signalFlag, "quit"), syscall.SIGQUIT, termHandler(cancel))
	daemon.AddCommand(daemon.StringFlag(signalFlag, "stop"), syscall.SIGTERM, termHandler(cancel))
	if err := os.MkdirAll("tmp", 0o755); err != nil {
		log.Fatalln(err.Error())
	}

	cntxt := &daemon.Context{
		PidFileName: "tmp/local-dev-dependencies.pid",
		PidFilePerm: 0o644,
		LogFileName: "tmp/local-dev-dependencies.log",
		LogFilePerm: 0o640,
		WorkDir:     "./",
		Umask:       0o27,
		Args:        []string{"employee-reviews__local-dev-dependencies"},
	}

	if len(daemon.ActiveFlags()) > 0 {
		if err := sendSignal(cntxt); err != nil {
			log.Fatalln(err.Error())
		}
		return
	}

	switch flag.Arg(0) {
	case "":
	case "stop":
		if err := stop(cntxt); err != nil {
			log.Fatalln(err.Error())
		}
		return
	case "playwright":
		if err := playwright.Install(); err != nil {
			log.Fatalf("failed to install playwright dependencies: %s", err)
		}
		return
	default:
		log.Fatalf("unknown subcommand: %q", flag.Arg(0))
	}

	healthcheckAddr, err := freeAddr()
	if err != nil {
		log.Fatalln(err.Error())
	}
	cntxt.Env = append(os.Environ(), fmt.Sprintf("%s=%s", healthcheckEnvName, healthcheckAddr))

	d, err := cntxt.Reborn()
	if err != nil {
		if errors.Is(err, daemon.ErrWouldBlock) {
			// Already running
			return
		}
		log.Fatal("Unable to run: ", err)
	}

	if d != nil {
		if err := waitForHealthy(healthcheckAddr); err != nil {
			log.Fatalln(err.Error())
		}
		log.Printf("postgres is up, connection details in %s", envFile)
		return
	}

	defer func() { _ = cntxt.Release() }()
	runDaemon(ctx)
}

func runDaemon(ctx context.Context) {
	log.Print("- - - - - - - - - - - - - - -")
	log.Print("up and running")

	errChan := make(chan error, 1)
	go serveHealthcheck(os.Getenv(healthcheckEnvName))
	go startPostgres(errChan)
	go (func() {
		if err := daemon.ServeSignals(); err != nil {
			log.Printf("failed to respond to signal: %s", err)
		}
	})()

	select {
	case <-ctx.Done():
		log.Printf("context cancelled, shutting down")
		os.Exit(0)
	case err := <-errChan:
		log.Printf("shutting down: %s", err)
		os.Exit(1)
	}
}

func freeAddr() (string, error) {
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return "", fmt.Errorf("failed to create listener for the healthcheck: %w", err)
	}
	addr := ln.Addr().String()
	if err := ln.Close(); err != nil {
		return "", fmt.Errorf("failed to close listener: %w", err)
	}

	return addr, nil
}

func sendSignal(cntxt *daemon.Context) error {
	d, err := cntxt.Search()
	if err != nil {
		return fmt.Errorf("unable to send signal to the daemon: %w", err)
	}

	return daemon.SendCommands(d)
}

// waitForHealthy polls the daemon until it reports postgres being up.
func waitForHealthy(addr string) error {
	ctx, cancel := context.WithTimeout(context.Background(), startTimeout+2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}

	var refused int
	for {
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			if !strings.Contains(err.Error(), "connection refused") {
				return fmt.Errorf("failed to call health check endpoint: %w", err)
			}
			if refused >= 20 {
				return fmt.Errorf("failed to get health check %d times, check tmp/local-dev-dependencies.log", refused)
			}
			refused++
			time.Sleep(100 * time.Millisecond)
			continue
		}
		refused = 0

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			log.Printf("failed to read healthcheck body: %s", err)
		}
		if strings.HasSuffix(string(body), "true") {
			return nil
		}

		time.Sleep(100 * time.Millisecond)
	}
}

func stop(cntxt *daemon.Context) error {
	proc, err := cntxt.Search()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to find process: %w", err)
	}
	if proc == nil {
		return nil
	}

	if err := proc.Kill(); err != nil {
		return fmt.Errorf("failed to kill process: %w", err)
	}

	log.Printf("waiting for shutdown of local dev dependencies to complete")
	for {
		alive, err := cntxt.Search()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to check process: %w", err)
		}
		if alive == nil {
			fmt.Print("\n")
			return nil
		}
		fmt.Print(".")
		time.Sleep(100 * time.Millisecond)
	}
}

func serveHealthcheck(addr string) {
	if addr == "" {
		log.Printf("%s is empty in env", healthcheckEnvName)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("request from %s: %s %q, postgresUp=%t", r.RemoteAddr, r.Method, r.URL, postgresUp.Load())
		_, _ = fmt.Fprintf(w, "postgresUp=%t", postgresUp.Load())
	})

	log.Printf("about to listen to %q", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("healthcheck stopped: %s", err)
	}
}

func startPostgres(errChan chan<- error) {
	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	err, conn, done := test.StartPostgres(ctx)
	cancel()
	if err != nil {
		errChan <- fmt.Errorf("failed to start postgres: %w", err)
		return
	}

	env := map[string]string{"DB_DRIVER": "postgres", "DB_DSN": conn}
	if err := godotenv.Write(env, envFile); err != nil {
		done()
		errChan <- fmt.Errorf("failed to write %s: %w", envFile, err)
		return
	}

	postgresUp.Store(true)
	<-stopChan
	log.Printf("received stop signal")
	done()
	log.Printf("stopped postgres, time to report back")
	doneChan <- struct{}{}
}

func termHandler(cancel func()) func(sig os.Signal) error {
	return func(sig os.Signal) error {
		log.Println("terminating...")
		stopChan <- struct{}{}
		if sig == syscall.SIGQUIT {
			<-doneChan
		}
		cancel()
		return daemon.ErrStop
	}
}
