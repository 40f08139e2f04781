package query

import (
	"strings"

	"github.com/deppfellow/lightbnb/internal/models"
)

// ReservationColumns lists the reservations columns in models.Reservation
// field order.
const ReservationColumns = `id, start_date, end_date, property_id, guest_id`

// ReservationPatch builds an UPDATE that sets only the fields present in p.
// ok is false when p is empty and there is nothing to run.
func ReservationPatch(id int64, p models.ReservationPatch) (sql string, args []any, ok bool) {
	if p.IsEmpty() {
		return "", nil, false
	}

	var (
		b   builder
		set []string
	)

	if p.StartDate != nil {
		set = append(set, "start_date = "+b.bind(*p.StartDate))
	}
	if p.EndDate != nil {
		set = append(set, "end_date = "+b.bind(*p.EndDate))
	}
	if p.PropertyID != nil {
		set = append(set, "property_id = "+b.bind(*p.PropertyID))
	}

	var sb strings.Builder
	sb.WriteString("UPDATE reservations SET ")
	sb.WriteString(strings.Join(set, ", "))
	sb.WriteString(" WHERE id = ")
	sb.WriteString(b.bind(id))
	sb.WriteString(" RETURNING ")
	sb.WriteString(ReservationColumns)

	return sb.String(), b.args, true
}
