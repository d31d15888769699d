/*Institution selection & requisition flow*/
package main

import (
	"fmt"

	"github.com/google/uuid"

	"bankmatch/pkg/domain"
	"bankmatch/pkg/nordigen"
)

type linkCmd struct{}

func (l *linkCmd) Run(ctx *context) error {
	client, err := ctx.client(false)
	if err != nil {
		return err
	}

	if _, err := ensureLinked(ctx, client, false); err != nil {
		return err
	}

	return ctx.save(client)
}

// ensureLinked makes sure every selected institution has a linked
// requisition, walking the user through authorisation where needed. With
// noInput set it only verifies what is already there.
func ensureLinked(ctx *context, client *nordigen.Client, noInput bool) ([]*nordigen.Requisition, error) {
	if noInput {
		if len(ctx.state.Institutions) == 0 {
			return nil, fmt.Errorf("no institutions linked, run link first")
		}
	} else {
		reuse, err := ctx.prompter.ReuseInstitutions(ctx.state.Institutions)
		if err != nil {
			return nil, err
		}
		if !reuse {
			available, err := client.Institutions(ctx.cfg.Country)
			if err != nil {
				return nil, err
			}
			chosen, err := ctx.prompter.SelectInstitutions(available)
			if err != nil {
				return nil, err
			}
			if len(chosen) == 0 {
				return nil, fmt.Errorf("no institutions selected")
			}
			ctx.state.Institutions = chosen
		}
	}

	requisitions := make([]*nordigen.Requisition, 0, len(ctx.state.Institutions))
	for i := range ctx.state.Institutions {
		req, err := requisitionFor(ctx, client, &ctx.state.Institutions[i], noInput)
		if err != nil {
			return nil, err
		}
		requisitions = append(requisitions, req)
	}

	return requisitions, nil
}

func requisitionFor(ctx *context, client *nordigen.Client, inst *domain.Institution, noInput bool) (*nordigen.Requisition, error) {
	var req *nordigen.Requisition
	var err error

	if inst.RequisitionID != "" {
		req, err = client.Requisition(inst.RequisitionID)
		if err != nil {
			if noInput {
				return nil, err
			}
			ctx.log.Warn().Err(err).Str("institution", inst.ID).Msg("stored requisition unusable, creating a new one")
			req = nil
		}
	}

	if req == nil {
		if noInput {
			return nil, fmt.Errorf("%s has no requisition, run link first", inst.Name)
		}
		req, err = client.CreateRequisition(inst.ID, ctx.cfg.Redirect, uuid.NewString())
		if err != nil {
			return nil, err
		}
	}
	inst.RequisitionID = req.ID

	if req.Linked() {
		return req, nil
	}
	if noInput {
		return nil, fmt.Errorf("%s is not linked, run link first", inst.Name)
	}

	fmt.Printf("Authorise access to %s by visiting:\n  %s\n", inst, req.Link)
	if err := ctx.prompter.ConfirmLinked(inst); err != nil {
		return nil, err
	}

	req, err = client.Requisition(req.ID)
	if err != nil {
		return nil, err
	}
	if !req.Linked() {
		return nil, fmt.Errorf("%s still unlinked after returning", inst.Name)
	}
	inst.RequisitionID = req.ID

	return req, nil
}
