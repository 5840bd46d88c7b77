// Package orgunits resolves raw organisation unit tokens against a
// mapping's org-unit catalog using the configured resolution strategy.
package orgunits

import (
	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/types"
)

// Resolve finds the organisation unit the token refers to. The auto
// strategy tries identifier, then code, then name; the first hit wins.
// Unmatched tokens and unknown strategies resolve to a NotFoundError.
func Resolve(token string, strategy types.OrgUnitStrategy, units []types.OrgUnit) (types.OrgUnit, error) {
	switch strategy {
	case types.StrategyUID:
		return find(units, func(u types.OrgUnit) bool { return u.ID == token }, token)
	case types.StrategyCode:
		return find(units, func(u types.OrgUnit) bool { return u.Code == token }, token)
	case types.StrategyName:
		return find(units, func(u types.OrgUnit) bool { return u.Name == token }, token)
	case types.StrategyAuto:
		if u, err := find(units, func(u types.OrgUnit) bool { return u.ID == token }, token); err == nil {
			return u, nil
		}
		if u, err := find(units, func(u types.OrgUnit) bool { return u.Code == token }, token); err == nil {
			return u, nil
		}
		return find(units, func(u types.OrgUnit) bool { return u.Name == token }, token)
	default:
		return types.OrgUnit{}, errors.NewNotFoundError("organisation unit", token)
	}
}

func find(units []types.OrgUnit, match func(types.OrgUnit) bool, token string) (types.OrgUnit, error) {
	for _, u := range units {
		if match(u) {
			return u, nil
		}
	}
	return types.OrgUnit{}, errors.NewNotFoundError("organisation unit", token)
}
