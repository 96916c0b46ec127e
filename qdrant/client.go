// Package qdrant reads embedding tables out of a Qdrant collection over gRPC and
// writes reduced principal component coordinates back as point payload.
package qdrant

import (
	"context"
	"crypto/tls"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// DefaultPageSize is the number of points requested per scroll call.
const DefaultPageSize = 256

// IDColumn is the table column holding each point's ID.
const IDColumn = "id"

// Options configures a Client beyond its address and collection.
type Options struct {
	// APIKey is sent as the api-key header on every call when set.
	APIKey string
	// UseTLS switches the transport from plaintext to TLS.
	UseTLS bool
	// VectorName selects a named vector. Empty means the collection's default vector.
	VectorName string
	// PageSize is the scroll page size. Zero means DefaultPageSize.
	PageSize int
}

// Client wraps gRPC connections to a Qdrant vector database instance.
type Client struct {
	connection        *grpc.ClientConn
	pointsClient      pb.PointsClient
	collectionsClient pb.CollectionsClient
	collectionName    string
	vectorName        string
	pageSize          uint32
}

// NewClient creates a new Qdrant client connected to the specified address and
// checks that the target collection exists.
func NewClient(ctx context.Context, address, collectionName string, options Options) (*Client, error) {
	transportCredentials := insecure.NewCredentials()
	if options.UseTLS {
		transportCredentials = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	dialOptions := []grpc.DialOption{grpc.WithTransportCredentials(transportCredentials)}
	if options.APIKey != "" {
		dialOptions = append(dialOptions, grpc.WithUnaryInterceptor(apiKeyInterceptor(options.APIKey)))
	}

	connection, err := grpc.NewClient(address, dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant: %w", err)
	}

	client := newClient(pb.NewPointsClient(connection), pb.NewCollectionsClient(connection), collectionName, options)
	client.connection = connection

	if err := client.checkCollectionExists(ctx); err != nil {
		connection.Close()
		return nil, err
	}

	return client, nil
}

func newClient(pointsClient pb.PointsClient, collectionsClient pb.CollectionsClient, collectionName string, options Options) *Client {
	pageSize := options.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Client{
		pointsClient:      pointsClient,
		collectionsClient: collectionsClient,
		collectionName:    collectionName,
		vectorName:        options.VectorName,
		pageSize:          uint32(pageSize),
	}
}

// apiKeyInterceptor attaches the API key header Qdrant Cloud expects.
func apiKeyInterceptor(apiKey string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, request, reply any, connection *grpc.ClientConn, invoker grpc.UnaryInvoker, callOptions ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
		return invoker(ctx, method, request, reply, connection, callOptions...)
	}
}

// checkCollectionExists fails when the target collection is missing. The collection
// is never created here because an empty collection has nothing to analyse.
func (client *Client) checkCollectionExists(ctx context.Context) error {
	_, err := client.collectionsClient.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: client.collectionName,
	})
	if err != nil {
		return fmt.Errorf("collection %q: %w", client.collectionName, err)
	}
	return nil
}

// Describe names the source for logs, e.g. "qdrant://embeddings".
func (client *Client) Describe() string {
	return "qdrant://" + client.collectionName
}

// Close terminates the gRPC connection to the Qdrant server.
func (client *Client) Close() error {
	if client.connection == nil {
		return nil
	}
	return client.connection.Close()
}
