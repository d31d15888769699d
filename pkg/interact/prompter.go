// Package interact holds the terminal prompts the CLI needs: credential
// input, institution selection and the transfer-matching oracle.
package interact

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/manifoldco/promptui"

	"bankmatch/pkg/domain"
	"bankmatch/pkg/matcher"
)

type Prompter struct{}

// check it meets the interface
var _ matcher.Oracle = &Prompter{}

// Credentials asks for the API secret id and key.
func (p *Prompter) Credentials() (string, string, error) {
	id, err := (&promptui.Prompt{Label: "Secret ID"}).Run()
	if err != nil {
		return "", "", err
	}

	key, err := (&promptui.Prompt{Label: "Secret key", Mask: '*'}).Run()
	if err != nil {
		return "", "", err
	}

	return id, key, nil
}

// ReuseInstitutions shows the previously selected institutions and asks
// whether to keep them.
func (p *Prompter) ReuseInstitutions(saved []domain.Institution) (bool, error) {
	if len(saved) == 0 {
		return false, nil
	}

	fmt.Println("These institutions were selected last time:")
	for i := range saved {
		fmt.Printf(" - %s\n", &saved[i])
	}

	_, err := (&promptui.Prompt{Label: "Reuse them", IsConfirm: true}).Run()
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SelectInstitutions lets the user pick institutions one at a time until
// they are done. The list is searchable by name.
func (p *Prompter) SelectInstitutions(available []domain.Institution) ([]domain.Institution, error) {
	var chosen []domain.Institution

	for len(available) > 0 {
		labels := make([]string, len(available))
		for i := range available {
			labels[i] = available[i].String()
		}

		sel := promptui.Select{
			Label:             "Choose an institution you have accounts with",
			Items:             labels,
			Size:              15,
			StartInSearchMode: true,
			Searcher: func(input string, index int) bool {
				return strings.Contains(strings.ToLower(labels[index]), strings.ToLower(input))
			},
		}

		index, _, err := sel.Run()
		if err != nil {
			return nil, err
		}

		chosen = append(chosen, available[index])
		available = append(available[:index], available[index+1:]...)

		fmt.Println("You've selected the following institutions:")
		for i := range chosen {
			fmt.Printf(" - %s\n", &chosen[i])
		}

		_, err = (&promptui.Prompt{Label: "Select additional institutions", IsConfirm: true}).Run()
		if errors.Is(err, promptui.ErrAbort) {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return chosen, nil
}

// ConfirmLinked blocks until the user reports they have finished the
// authorisation flow in their browser. Either answer means done.
func (p *Prompter) ConfirmLinked(inst *domain.Institution) error {
	_, err := (&promptui.Prompt{Label: fmt.Sprintf("Done authorising access to %s", inst), IsConfirm: true}).Run()
	if errors.Is(err, promptui.ErrAbort) {
		return nil
	}
	return err
}

// Pick implements matcher.Oracle: present the close candidates and let the
// user choose the other half of the transfer, or skip.
func (p *Prompter) Pick(target *domain.Normal, candidates []matcher.Candidate) (*matcher.Candidate, error) {
	fmt.Println("Trying to figure out if the following transaction is part of a transfer")
	fmt.Println(target)

	labels := make([]string, 0, len(candidates)+1)
	for _, c := range candidates {
		labels = append(labels, formatCandidate(c))
	}
	labels = append(labels, "(skip, leave unmatched)")

	sel := promptui.Select{
		Label: "Which is the other half of the transfer",
		Items: labels,
		Size:  10,
	}

	index, _, err := sel.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if index == len(candidates) {
		return nil, nil
	}
	return &candidates[index], nil
}

func formatCandidate(c matcher.Candidate) string {
	days := int(c.Score / (24 * time.Hour))
	return fmt.Sprintf("[%+dd] %s", days, c.Transaction)
}
