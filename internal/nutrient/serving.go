package nutrient

import (
	"strconv"
	"strings"
)

// IsRecipe reports whether item is a recipe. itemType wins over type when
// both are set.
func IsRecipe(item CatalogItem) bool {
	kind := item.ItemType
	if kind == "" {
		kind = item.Type
	}
	switch strings.ToUpper(kind) {
	case "RECIPE", "RECIPES":
		return true
	}
	return false
}

// ServingIdentifier returns a stable selection key for s. Servings sharing
// an id and a name collide.
func ServingIdentifier(s ServingOption) string {
	label := s.Name
	if label == "" {
		label = s.InnerName
	}
	if s.ID != nil {
		return strconv.FormatInt(*s.ID, 10) + "_" + label
	}
	return label
}

// FindServingByIdentifier returns the first option whose identifier matches,
// or nil.
func FindServingByIdentifier(opts []ServingOption, identifier string) *ServingOption {
	if identifier == "" {
		return nil
	}
	for i := range opts {
		if ServingIdentifier(opts[i]) == identifier {
			return &opts[i]
		}
	}
	return nil
}

// ResolveDefaultServing picks the item's default unit: the grams profile,
// then a well-known gram/ml name, then the first option.
func ResolveDefaultServing(opts []ServingOption) *ServingOption {
	if len(opts) == 0 {
		return nil
	}
	for i := range opts {
		if opts[i].HasProfile(GramsProfileID) {
			return &opts[i]
		}
	}
	for i := range opts {
		if isGramUnitName(opts[i].Name) {
			return &opts[i]
		}
	}
	return &opts[0]
}

func isGramUnitName(name string) bool {
	name = strings.ToLower(name)
	for _, n := range DefaultGramUnitNames {
		if name == n {
			return true
		}
	}
	return false
}

func findPortion(opts []ServingOption) *ServingOption {
	for i := range opts {
		if opts[i].HasProfile(PortionProfileID) {
			return &opts[i]
		}
	}
	return nil
}

func servings(item CatalogItem) float64 {
	if item.NumberOfServings > 0 {
		return item.NumberOfServings
	}
	return 1
}

// defaultAmount is the default serving's amount, or DefaultServingGrams when
// there is none or it carries no usable amount.
func defaultAmount(opts []ServingOption) float64 {
	if d := ResolveDefaultServing(opts); d != nil && d.Amount > 0 {
		return d.Amount
	}
	return DefaultServingGrams
}

// ResolveOriginalServingAmount returns the reference amount the item's
// stored calories and nutrients correspond to. A stored positive value is
// returned unchanged.
func ResolveOriginalServingAmount(item CatalogItem) float64 {
	amount, _ := ResolveOriginalServing(item)
	return amount
}

// ResolveOriginalServing is ResolveOriginalServingAmount plus the identifier
// of the serving the amount was derived from. The identifier is empty when
// the amount came from recipe weights or the fallback.
func ResolveOriginalServing(item CatalogItem) (float64, string) {
	if item.OriginalServingAmount > 0 {
		return item.OriginalServingAmount, item.OriginalServingID
	}

	if IsRecipe(item) {
		n := servings(item)
		if p := findPortion(item.ServingOptions); p != nil && p.Amount > 0 {
			return p.Amount * n, ServingIdentifier(*p)
		}
		if item.TotalNutrients != nil {
			if item.TotalNutrients.TotalQuantity > 0 {
				return item.TotalNutrients.TotalQuantity, ""
			}
			if item.TotalNutrients.WeightAfterCooking > 0 {
				return item.TotalNutrients.WeightAfterCooking, ""
			}
		}
		return defaultAmount(item.ServingOptions) * n, defaultIdentifier(item.ServingOptions)
	}

	return defaultAmount(item.ServingOptions), defaultIdentifier(item.ServingOptions)
}

func defaultIdentifier(opts []ServingOption) string {
	if d := ResolveDefaultServing(opts); d != nil {
		return ServingIdentifier(*d)
	}
	return ""
}

// PinOriginalServing stores the resolved reference amount and serving id on
// item. Already pinned items are left as they are.
func PinOriginalServing(item *CatalogItem) {
	if item.OriginalServingAmount > 0 {
		return
	}
	item.OriginalServingAmount, item.OriginalServingID = ResolveOriginalServing(*item)
}
