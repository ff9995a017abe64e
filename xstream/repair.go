// SPDX-License-Identifier: Apache-2.0

package xstream

import "strings"

// Repair rewrites classifier names into legal xs:NCName tokens by stripping
// whitespace. It is a pure on-Meta transformation: traces and events pass
// through untouched.
type Repair struct {
	BaseHandler
}

func NewRepair() *Repair { return &Repair{} }

func (*Repair) OnMeta(m Meta) (Meta, error) {
	for i, c := range m.Classifiers {
		m.Classifiers[i].Name = strings.ReplaceAll(c.Name, " ", "")
	}
	return m, nil
}

var _ Handler = (*Repair)(nil)
