package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"protonup-go/download"
	"protonup-go/service"
	"protonup-go/types"
	"protonup-go/util"

	"github.com/google/uuid"
)

const plainReportInterval = time.Second

// runPlain drives the service and prints a status line per active request
// every second. Used when stdout is not a terminal.
func runPlain(ctx context.Context, installer service.Starter, reqs []service.Request, out io.Writer) error {
	svc := service.New(installer)
	runDone := make(chan error, 1)
	go func() { runDone <- svc.Run(ctx) }()

	names := make(map[uuid.UUID]string, len(reqs))
	for _, r := range reqs {
		names[r.ID] = r.Release.Version
	}
	handles := make(map[uuid.UUID]*download.ProgressState)
	submitErrs := make(chan error, len(reqs))

	ticker := time.NewTicker(plainReportInterval)
	defer ticker.Stop()

	var errs []error
	pending := len(reqs)
	events := svc.Events()
loop:
	for pending > 0 {
		select {
		case ev, ok := <-events:
			if !ok {
				break loop
			}
			switch ev := ev.(type) {
			case service.Ready:
				go func() {
					for _, r := range reqs {
						if err := svc.Submit(ctx, r); err != nil {
							submitErrs <- fmt.Errorf("%s: %w", r.Release.Version, err)
						}
					}
				}()
			case service.Started:
				handles[ev.ID] = ev.Progress
				fmt.Fprintf(out, "%s: started\n", names[ev.ID])
			case service.Succeeded:
				pending--
				delete(handles, ev.ID)
				fmt.Fprintf(out, "%s: installed\n", names[ev.ID])
			case service.Failed:
				pending--
				delete(handles, ev.ID)
				errs = append(errs, fmt.Errorf("%s: %w", names[ev.ID], ev.Err))
				fmt.Fprintf(out, "%s: failed: %v\n", names[ev.ID], ev.Err)
				if types.Retryable(ev.Err) {
					fmt.Fprintf(out, "%s: this may be temporary, try again\n", names[ev.ID])
				}
			}
		case err := <-submitErrs:
			pending--
			errs = append(errs, err)
		case <-ticker.C:
			for id, p := range handles {
				fmt.Fprintln(out, statusLine(names[id], p))
			}
		}
	}

	svc.Close()
	for range events {
	}
	if err := <-runDone; err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func statusLine(name string, p *download.ProgressState) string {
	return fmt.Sprintf("%s: %s %s / %s (%.0f%%)", name, p.State(),
		util.FormatSize(p.BytesDone()), util.FormatSize(p.Total()), p.Percent()*100)
}
