package service

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName — полное имя gRPC-сервиса записи.
const ServiceName = "slotbooking.v1.BookingService"

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

// BookingServer — серверная часть slotbooking.v1.BookingService.
// Запросы и ответы передаются well-known типами protobuf, поля описаны в BookingService.
type BookingServer interface {
	ListDates(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListAvailableSlots(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PreviewBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Book(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Cancel(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MyReservation(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterBookingServer(s grpc.ServiceRegistrar, srv BookingServer) {
	s.RegisterService(&BookingServiceDesc, srv)
}

func unaryHandler[Req proto.Message](
	method string,
	newReq func() Req,
	call func(BookingServer, context.Context, Req) (*structpb.Struct, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BookingServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func newStruct() *structpb.Struct { return &structpb.Struct{} }

func newEmpty() *emptypb.Empty { return &emptypb.Empty{} }

var BookingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListDates",
			Handler:    unaryHandler("ListDates", newEmpty, BookingServer.ListDates),
		},
		{
			MethodName: "ListAvailableSlots",
			Handler:    unaryHandler("ListAvailableSlots", newStruct, BookingServer.ListAvailableSlots),
		},
		{
			MethodName: "PreviewBooking",
			Handler:    unaryHandler("PreviewBooking", newStruct, BookingServer.PreviewBooking),
		},
		{
			MethodName: "Book",
			Handler:    unaryHandler("Book", newStruct, BookingServer.Book),
		},
		{
			MethodName: "Cancel",
			Handler:    unaryHandler("Cancel", newStruct, BookingServer.Cancel),
		},
		{
			MethodName: "MyReservation",
			Handler:    unaryHandler("MyReservation", newStruct, BookingServer.MyReservation),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "slotbooking/v1/booking.proto",
}

// BookingClient вызывает slotbooking.v1.BookingService.
type BookingClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingClient(cc grpc.ClientConnInterface) *BookingClient {
	return &BookingClient{cc: cc}
}

func (c *BookingClient) invoke(ctx context.Context, method string, in proto.Message, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingClient) ListDates(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListDates", &emptypb.Empty{}, opts...)
}

func (c *BookingClient) ListAvailableSlots(ctx context.Context, date string, page, pageSize int, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"date": date, "page": page, "page_size": pageSize})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "ListAvailableSlots", in, opts...)
}

func (c *BookingClient) PreviewBooking(ctx context.Context, userID, slotID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"user_id": userID, "slot_id": slotID})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "PreviewBooking", in, opts...)
}

func (c *BookingClient) Book(ctx context.Context, userID, displayName, slotID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"user_id": userID, "display_name": displayName, "slot_id": slotID})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "Book", in, opts...)
}

func (c *BookingClient) Cancel(ctx context.Context, userID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"user_id": userID})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "Cancel", in, opts...)
}

func (c *BookingClient) MyReservation(ctx context.Context, userID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"user_id": userID})
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, "MyReservation", in, opts...)
}
