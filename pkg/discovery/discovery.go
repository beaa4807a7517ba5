// Package discovery announces running API instances in etcd under a lease,
// so load balancers and peers can find them.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/example/tienda/pkg/config"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

type ServiceDiscovery struct {
	client *clientv3.Client
	config *config.EtcdConfig
	logger *zap.Logger

	mu      sync.Mutex
	leaseID clientv3.LeaseID
	cancel  context.CancelFunc
}

type ServiceInstance struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	GRPCPort int    `json:"grpc_port,omitempty"`
}

func NewServiceDiscovery(cfg *config.EtcdConfig, logger *zap.Logger) (*ServiceDiscovery, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	return &ServiceDiscovery{
		client: cli,
		config: cfg,
		logger: logger,
	}, nil
}

// Key is where instance is stored: <prefix><name>/<host>:<port>.
func Key(prefix string, instance *ServiceInstance) string {
	return fmt.Sprintf("%s%s/%s:%d", prefix, instance.Name, instance.Host, instance.Port)
}

// Register writes instance under a lease and keeps the lease alive until
// Deregister is called.
func (sd *ServiceDiscovery) Register(ctx context.Context, instance *ServiceInstance) error {
	value, err := json.Marshal(instance)
	if err != nil {
		return fmt.Errorf("failed to encode instance: %w", err)
	}

	ttl := sd.config.LeaseTTL
	if ttl <= 0 {
		ttl = 30
	}
	lease, err := sd.client.Grant(ctx, ttl)
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}

	key := Key(sd.config.Prefix, instance)
	if _, err := sd.client.Put(ctx, key, string(value), clientv3.WithLease(lease.ID)); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	// Keep alive outlives the registration request.
	kaCtx, cancel := context.WithCancel(context.Background())
	ch, err := sd.client.KeepAlive(kaCtx, lease.ID)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to keep alive: %w", err)
	}

	sd.mu.Lock()
	sd.leaseID = lease.ID
	sd.cancel = cancel
	sd.mu.Unlock()

	go func() {
		for range ch {
		}
		sd.logger.Warn("Etcd lease keep-alive ended", zap.String("key", key))
	}()

	sd.logger.Info("Service registered", zap.String("key", key), zap.Int64("ttl", ttl))
	return nil
}

func (sd *ServiceDiscovery) Deregister(ctx context.Context, instance *ServiceInstance) error {
	sd.mu.Lock()
	cancel, leaseID := sd.cancel, sd.leaseID
	sd.cancel = nil
	sd.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if _, err := sd.client.Delete(ctx, Key(sd.config.Prefix, instance)); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}
	if leaseID != 0 {
		if _, err := sd.client.Revoke(ctx, leaseID); err != nil {
			sd.logger.Warn("Failed to revoke lease", zap.Error(err))
		}
	}
	return nil
}

func (sd *ServiceDiscovery) Close() error {
	return sd.client.Close()
}
