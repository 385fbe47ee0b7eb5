package client

import (
	"context"

	"github.com/tilde-lab/mpds-client-go/pkg/projection"
	"github.com/tilde-lab/mpds-client-go/pkg/structure"
)

// GetCrystals retrieves atomic structures matching the query and
// builds them with the flavor's registered builder. The query is
// forced to props=atomic structure and the S-entry structure fields.
//
// Rows without an atomic basis (P-entries meeting the criterion,
// low-quality structures) are skipped, matching the builder contract.
func (c *Client) GetCrystals(ctx context.Context, query Query, phaseIDs []int, flavor string) ([]*structure.Structure, error) {
	builder, err := structure.ForFlavor(flavor)
	if err != nil {
		return nil, &APIError{
			Kind:    ErrorKindConfig,
			Message: err.Error(),
			Err:     err,
		}
	}

	search := make(Query, len(query)+1)
	for k, v := range query {
		search[k] = v
	}
	search["props"] = "atomic structure"

	rows, err := c.GetData(ctx, search, phaseIDs, projection.FieldSpec{
		projection.KindStructure: structure.StructureFields,
	})
	if err != nil {
		return nil, err
	}

	crystals := make([]*structure.Structure, 0, len(rows))
	for _, row := range rows {
		crystal, err := builder.Build(row)
		if err != nil {
			return nil, &APIError{
				Kind:    ErrorKindProtocol,
				Message: err.Error(),
				Err:     err,
			}
		}
		if crystal != nil {
			crystals = append(crystals, crystal)
		}
	}

	return crystals, nil
}
