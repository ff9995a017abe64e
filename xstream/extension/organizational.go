// SPDX-License-Identifier: Apache-2.0

package extension

import "github.com/pm4rs/xesflow/xstream"

const (
	OrgName   = "Organizational"
	OrgPrefix = "org"
	OrgURI    = "http://www.xes-standard.org/org.xesext"
)

// Org is the organizational extension's view of an event: the resource,
// role, and group responsible for it. Only events carry these attributes;
// viewing a Trace or Meta yields a zero-value Org rather than an error.
type Org struct {
	Resource *string
	Role     *string
	Group    *string
}

// ViewOrg extracts org:resource, org:role, and org:group from an event's
// attributes.
func ViewOrg(c xstream.Component) (Org, error) {
	var view Org
	if c.Kind != xstream.KindEvent {
		return view, nil
	}

	attrs := c.AttributesOf()
	for key, dst := range map[string]**string{
		"org:resource": &view.Resource,
		"org:role":     &view.Role,
		"org:group":    &view.Group,
	} {
		if v := attrs.Get(key); v != nil {
			s, err := xstream.AsString(v)
			if err != nil {
				return view, err
			}
			*dst = &s
		}
	}

	return view, nil
}

func orgValidator(_ xstream.Meta) xstream.ValidatorFunc {
	return func(c xstream.Component) error {
		_, err := ViewOrg(c)
		return err
	}
}
