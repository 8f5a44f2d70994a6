package devtools

import (
	"context"
	"net/http"

	"github.com/ItsNotGoodName/x-rxstore/internal/app"
	"github.com/ItsNotGoodName/x-rxstore/internal/build"
	"github.com/ItsNotGoodName/x-rxstore/pkg/store"
	"github.com/danielgtaylor/huma/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type StateOutput struct {
	Body app.State
}

type ViewOutput struct {
	Body map[string]any
}

type BuildOutput struct {
	Body build.Build
}

type ActionTypesOutput struct {
	Body []string
}

type DispatchInput struct {
	Body struct {
		Type   string `json:"type" minLength:"1" doc:"registered action type"`
		Amount int    `json:"amount,omitempty" doc:"amount for increments and decrements, defaults to the configured step"`
	}
}

type DispatchOutput struct {
	Body app.State
}

func (s *Server) register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-state",
		Method:      http.MethodGet,
		Path:        "/api/state",
		Summary:     "Get the store state",
		Tags:        []string{"Store"},
	}, func(ctx context.Context, input *struct{}) (*StateOutput, error) {
		return &StateOutput{Body: s.app.Store.State()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "dispatch-action",
		Method:      http.MethodPost,
		Path:        "/api/actions",
		Summary:     "Dispatch an action to the store",
		Tags:        []string{"Store"},
	}, s.dispatch)

	huma.Register(api, huma.Operation{
		OperationID: "list-action-types",
		Method:      http.MethodGet,
		Path:        "/api/action-types",
		Summary:     "List registered action types",
		Tags:        []string{"Store"},
	}, func(ctx context.Context, input *struct{}) (*ActionTypesOutput, error) {
		return &ActionTypesOutput{Body: s.registry.Registered()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-view",
		Method:      http.MethodGet,
		Path:        "/api/view",
		Summary:     "Get the committed view state",
		Tags:        []string{"View"},
	}, func(ctx context.Context, input *struct{}) (*ViewOutput, error) {
		return &ViewOutput{Body: s.app.View.State()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-build",
		Method:      http.MethodGet,
		Path:        "/api/build",
		Summary:     "Get build information",
		Tags:        []string{"Meta"},
	}, func(ctx context.Context, input *struct{}) (*BuildOutput, error) {
		return &BuildOutput{Body: build.Current}, nil
	})
}

func (s *Server) dispatch(ctx context.Context, input *DispatchInput) (*DispatchOutput, error) {
	_, span := s.tracer.Start(ctx, "dispatch", trace.WithAttributes(attribute.String("action.type", input.Body.Type)))
	defer span.End()

	if !s.registry.IsRegistered(input.Body.Type) {
		span.SetStatus(codes.Error, "unregistered action type")
		return nil, huma.Error422UnprocessableEntity("unregistered action type", &huma.ErrorDetail{
			Location: "body.type",
			Value:    input.Body.Type,
		})
	}

	action := store.Action{Type: input.Body.Type}
	if input.Body.Amount != 0 {
		action.Payload = input.Body.Amount
	}
	state, err := s.app.Store.DispatchWait(ctx, action)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return &DispatchOutput{Body: state}, nil
}

