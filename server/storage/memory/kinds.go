package memory

import (
	"github.com/Remi1095/chronicle/pkg/types"
)

// normalizeKind validates a field kind and returns the copy to store:
// numeric options are clamped, DateTime bounds are parsed and enumeration
// values are copied.
func normalizeKind(kind types.FieldKind) (types.FieldKind, error) {
	switch k := kind.(type) {
	case nil:
		return nil, invalid("field_kind", MsgKindRequired)
	case types.IntegerKind:
		if k.RangeStart != nil && k.RangeEnd != nil && *k.RangeStart > *k.RangeEnd {
			return nil, invalid("range", MsgInvalidRange)
		}
		return k, nil
	case types.DecimalKind:
		if k.RangeStart != nil && k.RangeEnd != nil && *k.RangeStart > *k.RangeEnd {
			return nil, invalid("range", MsgInvalidRange)
		}
		k.NumberPrecision = clamp(k.NumberPrecision, 1)
		k.NumberScale = clamp(k.NumberScale, 0)
		return k, nil
	case types.MoneyKind:
		if k.RangeStart != nil && k.RangeEnd != nil && k.RangeStart.GreaterThan(*k.RangeEnd) {
			return nil, invalid("range", MsgInvalidRange)
		}
		return k, nil
	case types.ProgressKind:
		k.TotalSteps = max(k.TotalSteps, 1)
		return k, nil
	case types.DateTimeKind:
		return normalizeDateTimeKind(k)
	case types.EnumerationKind:
		values := make(map[int64]string, len(k.Values))
		for value, label := range k.Values {
			values[value] = label
		}
		if _, ok := values[k.Default]; !ok {
			return nil, invalid("default", MsgInvalidDefault)
		}
		k.Values = values
		return k, nil
	}
	return kind, nil
}

func normalizeDateTimeKind(kind types.DateTimeKind) (types.FieldKind, error) {
	hydrated, err := types.Hydrate(types.DataTable{
		Fields: []types.Field{{FieldKind: kind}},
	})
	if err != nil {
		return nil, invalid("range", MsgInvalidDate)
	}

	k := hydrated.Fields[0].FieldKind.(types.DateTimeKind)
	if k.RangeStart != nil {
		k.RangeStart = types.NewDateBound(k.RangeStart.Time)
	}
	if k.RangeEnd != nil {
		k.RangeEnd = types.NewDateBound(k.RangeEnd.Time)
	}
	if k.RangeStart != nil && k.RangeEnd != nil && k.RangeStart.Time.After(k.RangeEnd.Time) {
		return nil, invalid("range", MsgInvalidRange)
	}
	return k, nil
}

// clamp returns a copy of v raised to at least floor. A nil option stays nil.
func clamp(v *int64, floor int64) *int64 {
	if v == nil {
		return nil
	}
	n := max(*v, floor)
	return &n
}
