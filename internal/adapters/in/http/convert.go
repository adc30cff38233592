package http

import (
	"fleet/internal/core/application/usecases/queries"
	"fleet/internal/core/domain/model/assignment"
	"fleet/internal/core/domain/model/kernel"
	"fleet/internal/core/domain/model/load"
	"fleet/internal/core/domain/model/resource"
)

func optionalID(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func idStrings(ids []kernel.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func fromPlace(p kernel.Place) Place {
	return Place{
		Name:       p.Name(),
		Street:     p.Street(),
		City:       p.City(),
		Region:     p.Region(),
		PostalCode: p.PostalCode(),
		Country:    p.Country(),
	}
}

func toLoadResponse(l *load.Load) LoadResponse {
	history := make([]StageEntry, 0, len(l.History()))
	for _, h := range l.History() {
		history = append(history, StageEntry{
			Stage:   h.Stage().String(),
			At:      h.At(),
			ActorID: h.Actor().String(),
			Note:    h.Note(),
		})
	}

	response := LoadResponse{
		ID:          l.ID().String(),
		OrgID:       l.OrgID().String(),
		Number:      l.Number(),
		Stage:       l.Stage().String(),
		Origin:      fromPlace(l.Origin()),
		Destination: fromPlace(l.Destination()),
		PickupAt:    l.Schedule().PickupAt(),
		DeliverBy:   l.Schedule().DeliverBy(),
		Currency:    l.Terms().LineHaul().Currency(),
		LineHaul:    l.Terms().LineHaul().Minor(),
		DriverID:    optionalID(l.AssignedDriverID()),
		VehicleIDs:  idStrings(l.VehicleIDs()),
		History:     history,
		Version:     l.Version(),
	}

	if c := l.Completion(); c != nil {
		completion := &Completion{DeliveredAt: c.DeliveredAt(), TotalDistance: c.TotalDistance()}
		if pay := c.DriverPay(); pay != nil {
			minor := pay.Minor()
			completion.DriverPayMinor = &minor
		}
		response.Completion = completion
	}

	return response
}

func toLoadSummaryResponse(l queries.LoadSummary) LoadSummaryResponse {
	return LoadSummaryResponse{
		ID:                  l.ID.String(),
		Number:              l.Number,
		Stage:               l.Stage.String(),
		OriginCity:          l.OriginCity,
		DestinationCity:     l.DestinationCity,
		PickupAt:            l.PickupAt,
		DeliverBy:           l.DeliverBy,
		DriverID:            optionalID(l.DriverID),
		PendingAssignmentID: optionalID(l.PendingAssignmentID),
		PendingExpiresAt:    l.PendingExpiresAt,
	}
}

func toLoadDetailsResponse(d queries.LoadDetails) LoadDetailsResponse {
	history := make([]StageEntry, len(d.History))
	for i, h := range d.History {
		history[i] = StageEntry{Stage: h.Stage.String(), At: h.At, ActorID: h.ActorID.String(), Note: h.Note}
	}

	return LoadDetailsResponse{
		ID:                  d.ID.String(),
		OrgID:               d.OrgID.String(),
		Number:              d.Number,
		Stage:               d.Stage.String(),
		OriginCity:          d.OriginCity,
		OriginCountry:       d.OriginCountry,
		DestinationCity:     d.DestinationCity,
		DestinationCountry:  d.DestinationCountry,
		PickupAt:            d.PickupAt,
		DeliverBy:           d.DeliverBy,
		Currency:            d.Currency,
		LineHaulMinor:       d.LineHaulMinor,
		DriverID:            optionalID(d.DriverID),
		VehicleIDs:          idStrings(d.VehicleIDs),
		DeliveredAt:         d.DeliveredAt,
		TotalDistance:       d.TotalDistance,
		DriverPayMinor:      d.DriverPayMinor,
		PendingAssignmentID: optionalID(d.PendingAssignmentID),
		History:             history,
	}
}

func toAssignmentResponse(a *assignment.Assignment) AssignmentResponse {
	response := AssignmentResponse{
		ID:         a.ID().String(),
		LoadID:     a.LoadID().String(),
		DriverID:   a.DriverID().String(),
		VehicleIDs: idStrings(a.VehicleIDs()),
		OfferedBy:  a.OfferedBy().String(),
		State:      a.State().String(),
		CreatedAt:  a.CreatedAt(),
		ExpiresAt:  a.ExpiresAt(),
	}

	if r := a.Response(); r != nil {
		at := r.RespondedAt()
		by := r.By()
		response.RespondedAt = &at
		response.RespondedBy = optionalID(&by)
		response.Reason = r.Reason()
	}

	return response
}

func toResourceResponse(r *resource.Resource) ResourceResponse {
	return ResourceResponse{
		ID:           r.ID().String(),
		OrgID:        r.OrgID().String(),
		Kind:         r.Kind().String(),
		Name:         r.Name(),
		Availability: r.Availability().String(),
		HolderLoadID: optionalID(r.HolderLoadID()),
	}
}

func toNotificationResponse(v queries.NotificationView) NotificationResponse {
	return NotificationResponse{
		ID:           v.ID.String(),
		AssignmentID: v.AssignmentID.String(),
		Audience:     v.Audience.String(),
		LoadID:       v.LoadID.String(),
		Status:       v.Status.String(),
		Title:        v.Title,
		Message:      v.Message,
		Read:         v.Read,
		UpdatedAt:    v.UpdatedAt,
	}
}
