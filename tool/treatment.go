package tool

import (
	"errors"
	"fmt"

	"github.com/voicelane/frontdesk/core"
)

// NewTreatmentInfoTool lists catalog entries by name or category; with no
// filter it describes the whole catalog.
func NewTreatmentInfoTool() Tool {
	return NewFunctionTool(
		"get_treatment_info",
		"Get treatment information, optionally filtered by treatment name or category.",
		objectSchema(map[string]any{
			"name":     stringParam("Optional treatment name to match"),
			"category": stringParam("Optional category (preventive, diagnostic, restorative, ...)"),
		}),
		func(tc *Context, args map[string]any) (any, error) {
			if tc.Store() == nil {
				return "Treatment information is not available right now.", nil
			}
			treatments, err := tc.Store().Treatments(tc.Context(),
				optionalStringArg(args, "name"), optionalStringArg(args, "category"))
			if err != nil {
				return nil, err
			}
			if len(treatments) == 0 {
				return "I could not find any matching treatments.", nil
			}
			return describeTreatments(treatments), nil
		},
	)
}

// NewTreatmentPricingTool returns pricing for one catalog entry.
func NewTreatmentPricingTool() Tool {
	return NewFunctionTool(
		"get_treatment_pricing",
		"Get the price range and duration for a specific treatment by its identifier.",
		objectSchema(map[string]any{
			"treatment_id": stringParam("The treatment identifier, e.g. basic_cleaning"),
		}, "treatment_id"),
		func(tc *Context, args map[string]any) (any, error) {
			id, err := stringArg(args, "treatment_id")
			if err != nil {
				return nil, err
			}
			if tc.Store() == nil {
				return "Pricing information is not available right now.", nil
			}
			t, err := tc.Store().TreatmentPricing(tc.Context(), id)
			if errors.Is(err, core.ErrNotFound) {
				return "I could not find that treatment in our catalog.", nil
			}
			if err != nil {
				return nil, err
			}
			return fmt.Sprintf("%s costs between $%d and $%d and takes about %d minutes.",
				t.Name, t.PriceRangeMin, t.PriceRangeMax, t.DurationMinutes), nil
		},
	)
}

// NewSearchTreatmentsTool matches catalog entries by keyword.
func NewSearchTreatmentsTool() Tool {
	return NewFunctionTool(
		"search_treatments",
		"Search treatments by a keyword in their name or description.",
		objectSchema(map[string]any{
			"keyword": stringParam("The keyword to search for"),
		}, "keyword"),
		func(tc *Context, args map[string]any) (any, error) {
			keyword, err := stringArg(args, "keyword")
			if err != nil {
				return nil, err
			}
			if tc.Store() == nil {
				return "Treatment search is not available right now.", nil
			}
			treatments, err := tc.Store().SearchTreatments(tc.Context(), keyword)
			if err != nil {
				return nil, err
			}
			if len(treatments) == 0 {
				return fmt.Sprintf("No treatments match %q.", keyword), nil
			}
			return describeTreatments(treatments), nil
		},
	)
}

func describeTreatments(treatments []core.Treatment) []map[string]any {
	out := make([]map[string]any, 0, len(treatments))
	for _, t := range treatments {
		out = append(out, map[string]any{
			"treatment_id":     t.ID,
			"name":             t.Name,
			"description":      t.Description,
			"price_range":      fmt.Sprintf("$%d-$%d", t.PriceRangeMin, t.PriceRangeMax),
			"duration_minutes": t.DurationMinutes,
			"category":         t.Category,
		})
	}
	return out
}
