/*Basic command structure*/
package main

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"bankmatch/pkg/config"
	"bankmatch/pkg/interact"
	"bankmatch/pkg/logger"
	"bankmatch/pkg/nordigen"
	"bankmatch/pkg/state"
)

// context holds everything the commands share
type context struct {
	cfg      *config.Config
	log      zerolog.Logger
	state    *state.State
	prompter *interact.Prompter
}

// cli commands / args available
var cli struct {
	Config string `help:"Path to the config file." default:"config.yaml"`
	Debug  bool   `help:"Enable debug logging."`

	Link  linkCmd  `cmd:"" help:"Link bank accounts through the GoCardless bank account data API."`
	Sync  syncCmd  `cmd:"" help:"Fetch new transactions, match transfers and write the ledger."`
	Reset resetCmd `cmd:"" help:"Forget saved credentials, institutions and seen transactions."`
}

func main() {
	ctx := kong.Parse(&cli)

	cfg, err := config.Load(cli.Config)
	ctx.FatalIfErrorf(err)

	statePath := cfg.State
	if statePath == "" {
		statePath, err = state.DefaultPath()
		ctx.FatalIfErrorf(err)
	}

	st, err := state.Load(statePath, cfg.StateKey)
	ctx.FatalIfErrorf(err)

	err = ctx.Run(&context{
		cfg:      cfg,
		log:      logger.New(cli.Debug),
		state:    st,
		prompter: &interact.Prompter{},
	})
	ctx.FatalIfErrorf(err)
}

// client builds an API client from saved or configured secrets, prompting
// for them as a last resort.
func (c *context) client(noInput bool) (*nordigen.Client, error) {
	if !c.state.HasSecrets() {
		switch {
		case c.cfg.Secrets.ID != "" && c.cfg.Secrets.Key != "":
			c.state.Secrets = state.Secrets{ID: c.cfg.Secrets.ID, Key: c.cfg.Secrets.Key}
		case noInput:
			return nil, fmt.Errorf("no API secrets saved or configured, run link first")
		default:
			id, key, err := c.prompter.Credentials()
			if err != nil {
				return nil, err
			}
			c.state.Secrets = state.Secrets{ID: id, Key: key}
		}
	}

	opts := []nordigen.Option{}
	if c.state.Token != nil {
		opts = append(opts, nordigen.WithToken(c.state.Token))
	}
	return nordigen.New(c.state.Secrets.ID, c.state.Secrets.Key, opts...), nil
}

// save persists the state, carrying over the client's current token so the
// next run skips re-authentication.
func (c *context) save(client *nordigen.Client) error {
	if client != nil {
		c.state.Token = client.Token()
	}
	return c.state.Save()
}
