package domain

import (
	"fmt"
	"strings"
)

// Institution is a bank the user can link accounts from. RequisitionID is
// filled in once the user has authorised access.
type Institution struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Countries     []string `json:"countries"`
	RequisitionID string   `json:"requisition_id,omitempty"`
}

func (i *Institution) String() string {
	return fmt.Sprintf("%s [%s]", i.Name, strings.Join(i.Countries, ", "))
}
