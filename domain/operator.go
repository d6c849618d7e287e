package domain

// Operator is a query or update operator keyword, as written on the wire.
type Operator string

// Query operators. [OpImplicit] is the bare equality form {path: value}.
const (
	OpImplicit  Operator = ""
	OpEq        Operator = "$eq"
	OpNe        Operator = "$ne"
	OpGt        Operator = "$gt"
	OpGte       Operator = "$gte"
	OpLt        Operator = "$lt"
	OpLte       Operator = "$lte"
	OpIn        Operator = "$in"
	OpNin       Operator = "$nin"
	OpAll       Operator = "$all"
	OpExists    Operator = "$exists"
	OpMod       Operator = "$mod"
	OpSize      Operator = "$size"
	OpGeoWithin Operator = "$geoWithin"
	OpElemMatch Operator = "$elemMatch"
	OpRegex     Operator = "$regex"
)

// Update operators.
const (
	OpSet         Operator = "$set"
	OpSetOnInsert Operator = "$setOnInsert"
	OpUnset       Operator = "$unset"
	OpInc         Operator = "$inc"
	OpMul         Operator = "$mul"
	OpMax         Operator = "$max"
	OpMin         Operator = "$min"
	OpPush        Operator = "$push"
	OpAddToSet    Operator = "$addToSet"
	OpPull        Operator = "$pull"
	OpPullAll     Operator = "$pullAll"
	OpPop         Operator = "$pop"
	OpRename      Operator = "$rename"
	OpCurrentDate Operator = "$currentDate"
)

// Modifier keys used inside $push and $addToSet.
const (
	ModEach     = "$each"
	ModPosition = "$position"
	ModSlice    = "$slice"
	ModSort     = "$sort"
)

// String implements [fmt.Stringer].
func (o Operator) String() string {
	if o == OpImplicit {
		return "equality"
	}
	return string(o)
}
