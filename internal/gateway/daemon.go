package gateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/opsline/helpdesk/internal/config"
	"github.com/opsline/helpdesk/internal/retention"
	"github.com/opsline/helpdesk/internal/ticket"
	"gorm.io/gorm"
)

// Daemon is the main helpdesk bot process. It connects to a chat platform
// via an Adapter, pumps inbound messages through the Router, and runs the
// retention scheduler in the background.
type Daemon struct {
	db      *gorm.DB
	cfg     *config.Config
	adapter Adapter
	photos  ticket.PhotoStore
	files   retention.FileRemover
	out     io.Writer
}

// DaemonOpts holds parameters for creating a new Daemon.
type DaemonOpts struct {
	DB      *gorm.DB
	Config  *config.Config
	Adapter Adapter
	Photos  ticket.PhotoStore     // optional; photo messages keep only their FileRef without it
	Files   retention.FileRemover // optional; enables the retention scheduler
	Out     io.Writer             // defaults to os.Stdout
}

// NewDaemon creates a Daemon with the given options.
func NewDaemon(opts DaemonOpts) (*Daemon, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("gateway: db is required")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("gateway: config is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("gateway: adapter is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if opts.Photos == nil {
		fmt.Fprintf(out, "gateway: no photo store configured; attachments will not be downloaded\n")
	}
	return &Daemon{
		db:      opts.DB,
		cfg:     opts.Config,
		adapter: opts.Adapter,
		photos:  opts.Photos,
		files:   opts.Files,
		out:     out,
	}, nil
}

// Run starts the helpdesk daemon. It connects the adapter, builds all
// subsystems, and blocks until the context is cancelled. On shutdown it
// closes the adapter gracefully.
func (d *Daemon) Run(ctx context.Context) error {
	fmt.Fprintf(d.out, "Helpdesk connecting...\n")
	if err := d.adapter.Connect(ctx); err != nil {
		return fmt.Errorf("gateway: connect: %w", err)
	}

	// Extract bot user ID if the adapter supports it.
	var botUserID string
	if bui, ok := d.adapter.(BotUserIDer); ok {
		botUserID = bui.BotUserID()
	}

	notifier, err := NewNotifier(NotifierOpts{
		Adapter:      d.adapter,
		AdminChannel: d.cfg.AdminChannel(),
	})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("gateway: build notifier: %w", err)
	}

	engine, err := ticket.NewEngine(ticket.EngineOpts{
		DB:       d.db,
		Photos:   d.photos,
		Notifier: notifier,
	})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("gateway: build engine: %w", err)
	}
	dir := ticket.NewDirectory(d.db)

	cmdHandler, err := NewCommandHandler(CommandHandlerOpts{
		DB:        d.db,
		Engine:    engine,
		Directory: dir,
	})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("gateway: build command handler: %w", err)
	}

	router, err := NewRouter(RouterOpts{
		Engine:     engine,
		Directory:  dir,
		CmdHandler: cmdHandler,
		Adapter:    d.adapter,
		BotUserID:  botUserID,
		Out:        d.out,
	})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("gateway: build router: %w", err)
	}

	inbound, err := d.adapter.Listen(ctx)
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("gateway: listen: %w", err)
	}

	if d.files != nil {
		sweeper, err := retention.NewSweeper(retention.SweeperOpts{
			DB:     d.db,
			Files:  d.files,
			Window: time.Duration(d.cfg.Retention.WindowDays) * 24 * time.Hour,
		})
		if err != nil {
			d.adapter.Close()
			return fmt.Errorf("gateway: build sweeper: %w", err)
		}
		scheduler, err := retention.NewScheduler(retention.SchedulerOpts{
			Sweeper: sweeper,
			Cron:    d.cfg.Retention.SweepCron,
			Out:     d.out,
		})
		if err != nil {
			d.adapter.Close()
			return fmt.Errorf("gateway: build retention scheduler: %w", err)
		}
		go scheduler.Run(ctx)
	} else {
		fmt.Fprintf(d.out, "gateway: no file remover configured; retention sweeps disabled\n")
	}

	fmt.Fprintf(d.out, "Helpdesk online\n")
	if err := d.adapter.Send(ctx, OutboundMessage{
		ChannelID: d.cfg.AdminChannel(),
		Text:      "Helpdesk online",
	}); err != nil {
		log.Printf("gateway: send online message: %v", err)
	}

	// Main event loop: pump inbound messages until context is cancelled.
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(d.out, "Helpdesk shutting down...\n")
			d.sendShutdown()
			if err := d.adapter.Close(); err != nil {
				log.Printf("gateway: close adapter: %v", err)
			}
			fmt.Fprintf(d.out, "Helpdesk stopped\n")
			return nil

		case msg, ok := <-inbound:
			if !ok {
				fmt.Fprintf(d.out, "Helpdesk inbound channel closed\n")
				return nil
			}
			router.Handle(ctx, msg)
		}
	}
}

// sendShutdown posts a shutdown message to the admin channel (best-effort).
func (d *Daemon) sendShutdown() {
	if err := d.adapter.Send(context.Background(), OutboundMessage{
		ChannelID: d.cfg.AdminChannel(),
		Text:      "Helpdesk shutting down",
	}); err != nil {
		log.Printf("gateway: send shutdown message: %v", err)
	}
}
