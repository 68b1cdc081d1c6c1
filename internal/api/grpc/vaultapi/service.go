package vaultapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "vault.v1.Vault"

const (
	Vault_CreateEntry_FullMethodName = "/vault.v1.Vault/CreateEntry"
	Vault_ListEntries_FullMethodName = "/vault.v1.Vault/ListEntries"
	Vault_GetEntry_FullMethodName    = "/vault.v1.Vault/GetEntry"
	Vault_RevealEntry_FullMethodName = "/vault.v1.Vault/RevealEntry"
	Vault_UpdateEntry_FullMethodName = "/vault.v1.Vault/UpdateEntry"
	Vault_DeleteEntry_FullMethodName = "/vault.v1.Vault/DeleteEntry"
)

// VaultServer is the server API for the Vault service.
type VaultServer interface {
	CreateEntry(context.Context, *CreateEntryRequest) (*EntryResponse, error)
	ListEntries(context.Context, *ListEntriesRequest) (*ListEntriesResponse, error)
	GetEntry(context.Context, *GetEntryRequest) (*EntryResponse, error)
	RevealEntry(context.Context, *RevealEntryRequest) (*RevealEntryResponse, error)
	UpdateEntry(context.Context, *UpdateEntryRequest) (*EntryResponse, error)
	DeleteEntry(context.Context, *DeleteEntryRequest) (*DeleteEntryResponse, error)
}

// UnimplementedVaultServer can be embedded to have forward compatible implementations.
type UnimplementedVaultServer struct{}

func (UnimplementedVaultServer) CreateEntry(context.Context, *CreateEntryRequest) (*EntryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateEntry not implemented")
}
func (UnimplementedVaultServer) ListEntries(context.Context, *ListEntriesRequest) (*ListEntriesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListEntries not implemented")
}
func (UnimplementedVaultServer) GetEntry(context.Context, *GetEntryRequest) (*EntryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetEntry not implemented")
}
func (UnimplementedVaultServer) RevealEntry(context.Context, *RevealEntryRequest) (*RevealEntryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RevealEntry not implemented")
}
func (UnimplementedVaultServer) UpdateEntry(context.Context, *UpdateEntryRequest) (*EntryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateEntry not implemented")
}
func (UnimplementedVaultServer) DeleteEntry(context.Context, *DeleteEntryRequest) (*DeleteEntryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteEntry not implemented")
}

// RegisterVaultServer registers srv on s.
func RegisterVaultServer(s grpc.ServiceRegistrar, srv VaultServer) {
	s.RegisterService(&Vault_ServiceDesc, srv)
}

// unaryHandler adapts a typed method to grpc.MethodHandler the way generated code does.
func unaryHandler[Req, Resp any](fullMethod string, call func(VaultServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(VaultServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(VaultServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Vault_ServiceDesc is the grpc.ServiceDesc for the Vault service.
var Vault_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateEntry", Handler: unaryHandler(Vault_CreateEntry_FullMethodName, VaultServer.CreateEntry)},
		{MethodName: "ListEntries", Handler: unaryHandler(Vault_ListEntries_FullMethodName, VaultServer.ListEntries)},
		{MethodName: "GetEntry", Handler: unaryHandler(Vault_GetEntry_FullMethodName, VaultServer.GetEntry)},
		{MethodName: "RevealEntry", Handler: unaryHandler(Vault_RevealEntry_FullMethodName, VaultServer.RevealEntry)},
		{MethodName: "UpdateEntry", Handler: unaryHandler(Vault_UpdateEntry_FullMethodName, VaultServer.UpdateEntry)},
		{MethodName: "DeleteEntry", Handler: unaryHandler(Vault_DeleteEntry_FullMethodName, VaultServer.DeleteEntry)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vault/v1/vault.json",
}

// VaultClient is the client API for the Vault service.
type VaultClient interface {
	CreateEntry(ctx context.Context, in *CreateEntryRequest, opts ...grpc.CallOption) (*EntryResponse, error)
	ListEntries(ctx context.Context, in *ListEntriesRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error)
	GetEntry(ctx context.Context, in *GetEntryRequest, opts ...grpc.CallOption) (*EntryResponse, error)
	RevealEntry(ctx context.Context, in *RevealEntryRequest, opts ...grpc.CallOption) (*RevealEntryResponse, error)
	UpdateEntry(ctx context.Context, in *UpdateEntryRequest, opts ...grpc.CallOption) (*EntryResponse, error)
	DeleteEntry(ctx context.Context, in *DeleteEntryRequest, opts ...grpc.CallOption) (*DeleteEntryResponse, error)
}

type vaultClient struct {
	cc grpc.ClientConnInterface
}

// NewVaultClient returns a client that sends every call with the JSON codec.
func NewVaultClient(cc grpc.ClientConnInterface) VaultClient {
	return &vaultClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultClient) CreateEntry(ctx context.Context, in *CreateEntryRequest, opts ...grpc.CallOption) (*EntryResponse, error) {
	return invoke[EntryResponse](ctx, c.cc, Vault_CreateEntry_FullMethodName, in, opts)
}

func (c *vaultClient) ListEntries(ctx context.Context, in *ListEntriesRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error) {
	return invoke[ListEntriesResponse](ctx, c.cc, Vault_ListEntries_FullMethodName, in, opts)
}

func (c *vaultClient) GetEntry(ctx context.Context, in *GetEntryRequest, opts ...grpc.CallOption) (*EntryResponse, error) {
	return invoke[EntryResponse](ctx, c.cc, Vault_GetEntry_FullMethodName, in, opts)
}

func (c *vaultClient) RevealEntry(ctx context.Context, in *RevealEntryRequest, opts ...grpc.CallOption) (*RevealEntryResponse, error) {
	return invoke[RevealEntryResponse](ctx, c.cc, Vault_RevealEntry_FullMethodName, in, opts)
}

func (c *vaultClient) UpdateEntry(ctx context.Context, in *UpdateEntryRequest, opts ...grpc.CallOption) (*EntryResponse, error) {
	return invoke[EntryResponse](ctx, c.cc, Vault_UpdateEntry_FullMethodName, in, opts)
}

func (c *vaultClient) DeleteEntry(ctx context.Context, in *DeleteEntryRequest, opts ...grpc.CallOption) (*DeleteEntryResponse, error) {
	return invoke[DeleteEntryResponse](ctx, c.cc, Vault_DeleteEntry_FullMethodName, in, opts)
}
