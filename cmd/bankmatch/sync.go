/*Fetch, match, emit*/
package main

import (
	"sort"

	"bankmatch/pkg/domain"
	"bankmatch/pkg/matcher"
	"bankmatch/pkg/store"
)

type syncCmd struct {
	Out     string `help:"Where to write the ledger [csv:/path/file.csv jsonfile:/path/file.json es8:http://elasticsearch:9200]."`
	NoInput bool   `help:"Never prompt; ambiguous transfer pairings are left unmatched."`
}

type rawEntry struct {
	raw     domain.RawTransaction
	account *domain.Account
}

func (s *syncCmd) Run(ctx *context) error {
	client, err := ctx.client(s.NoInput)
	if err != nil {
		return err
	}

	requisitions, err := ensureLinked(ctx, client, s.NoInput)
	if err != nil {
		return err
	}

	var entries []rawEntry
	for _, req := range requisitions {
		for _, account := range req.Accounts {
			txns, err := client.Transactions(account.ID)
			if err != nil {
				ctx.log.Error().Err(err).Str("account", account.Display()).Msg("fetching transactions failed, skipping account")
				continue
			}

			fresh := 0
			for _, raw := range txns {
				if !ctx.state.MarkSeen(account.ID, raw.ID) {
					continue
				}
				entries = append(entries, rawEntry{raw: raw, account: account})
				fresh++
			}

			ctx.log.Info().
				Str("account", account.Display()).
				Int("booked", len(txns)).
				Int("new", fresh).
				Msg("fetched transactions")
		}
	}

	// matching depends on input order; sort so runs are reproducible
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.raw.Date.Equal(b.raw.Date) {
			return a.raw.Date.Before(b.raw.Date)
		}
		if a.account.ID != b.account.ID {
			return a.account.ID < b.account.ID
		}
		return a.raw.ID < b.raw.ID
	})

	transactions := make([]domain.Transaction, 0, len(entries))
	for i := range entries {
		transactions = append(transactions, domain.Transaction{
			Normal: matcher.Classify(&entries[i].raw, entries[i].account),
		})
	}

	var oracle matcher.Oracle = ctx.prompter
	if s.NoInput {
		oracle = matcher.DeclineAll{}
	}

	ledger := matcher.Match(transactions, oracle)

	out := s.Out
	if out == "" {
		out = ctx.cfg.Out
	}
	sink, err := store.FromTarget(out)
	if err != nil {
		return err
	}
	if err := sink.Write(ledger); err != nil {
		return err
	}

	movements, transfers := 0, 0
	for _, t := range ledger {
		if t.Transfer != nil {
			transfers++
		} else {
			movements++
		}
	}
	ctx.log.Info().
		Int("movements", movements).
		Int("transfers", transfers).
		Str("out", out).
		Msg("ledger written")

	return ctx.save(client)
}
