package delivery

import "context"

type Service interface {
	// Send mails one report to its employee.
	Send(ctx context.Context, req SendRequest) (SendResponse, error)
	// SendAll regenerates every report and mails them one by one.
	SendAll(ctx context.Context) (BatchResponse, error)
	List(ctx context.Context, req ListDeliveriesRequest) (ListDeliveriesResponse, error)
}
