package lndc

import (
	"context"
	"crypto/x509"
	"encoding/hex"
	"math/big"
	"os"
	"strings"

	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/pkg/errors"
	"github.com/the-lightning-land/feeadjust/fdb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const (
	// DefaultBaseFeeMsat is used for updates that don't carry a base fee.
	DefaultBaseFeeMsat = 1000

	// DefaultTimeLockDelta is used for updates that don't carry a CLTV delta.
	DefaultTimeLockDelta = 80
)

type Client struct {
	client               lnrpc.LightningClient
	conn                 *grpc.ClientConn
	macaroon             string
	defaultBaseFeeMsat   int64
	defaultTimeLockDelta uint32
}

type Config struct {
	TlsCertPath          string
	RpcServer            string
	MacaroonPath         string
	DefaultBaseFeeMsat   int64
	DefaultTimeLockDelta uint32
}

func NewClient(config *Config) (*Client, error) {
	cert, err := makeTlsCertFromPath(config.TlsCertPath)
	if err != nil {
		return nil, errors.Errorf("Could not make TLS cert: %v", err)
	}

	creds := credentials.NewClientTLSFromCert(cert, "")

	conn, err := grpc.Dial(config.RpcServer, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, errors.Errorf("Could not connect to lightning node: %v", err)
	}

	macaroon, err := makeMacaroonFromPath(config.MacaroonPath)
	if err != nil {
		conn.Close()
		return nil, errors.Errorf("Could not make macaroon: %v", err)
	}

	client := newClient(lnrpc.NewLightningClient(conn), macaroon, config)
	client.conn = conn

	return client, nil
}

func newClient(rpc lnrpc.LightningClient, macaroon string, config *Config) *Client {
	client := &Client{
		client:               rpc,
		macaroon:             macaroon,
		defaultBaseFeeMsat:   config.DefaultBaseFeeMsat,
		defaultTimeLockDelta: config.DefaultTimeLockDelta,
	}

	if client.defaultBaseFeeMsat == 0 {
		client.defaultBaseFeeMsat = DefaultBaseFeeMsat
	}

	if client.defaultTimeLockDelta == 0 {
		client.defaultTimeLockDelta = DefaultTimeLockDelta
	}

	return client
}

func (client *Client) Close() error {
	if client.conn == nil {
		return nil
	}

	return client.conn.Close()
}

func (client *Client) withMacaroon(ctx context.Context) context.Context {
	if client.macaroon == "" {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx, "macaroon", client.macaroon)
}

// IdentityPubKey returns the public key of the connected node.
func (client *Client) IdentityPubKey(ctx context.Context) (fdb.PubKey, error) {
	info, err := client.client.GetInfo(client.withMacaroon(ctx), &lnrpc.GetInfoRequest{})
	if err != nil {
		return "", errors.Wrap(err, "Could not get info")
	}

	return fdb.PubKey(info.IdentityPubkey), nil
}

// Channels lists all open channels, active or not.
func (client *Client) Channels(ctx context.Context) ([]*fdb.Channel, error) {
	channelList, err := client.client.ListChannels(client.withMacaroon(ctx), &lnrpc.ListChannelsRequest{})
	if err != nil {
		return nil, errors.Wrap(err, "Could not list channels")
	}

	channels := make([]*fdb.Channel, 0, len(channelList.Channels))
	for _, channel := range channelList.Channels {
		chanPoint, err := fdb.NewChanPointFromString(channel.ChannelPoint)
		if err != nil {
			return nil, errors.Wrapf(err, "Could not parse channel %v", channel.ChanId)
		}

		channels = append(channels, &fdb.Channel{
			ChanPoint: chanPoint,
			ChanId:    fdb.ChanId(channel.ChanId),
			ToNode:    fdb.PubKey(channel.RemotePubkey),
			Capacity:  channel.Capacity,
			Active:    channel.Active,
		})
	}

	return channels, nil
}

// PendingChannels lists channels that are opening or closing.
func (client *Client) PendingChannels(ctx context.Context) ([]*fdb.Channel, error) {
	pending, err := client.client.PendingChannels(client.withMacaroon(ctx), &lnrpc.PendingChannelsRequest{})
	if err != nil {
		return nil, errors.Wrap(err, "Could not list pending channels")
	}

	var pendingChannels []*lnrpc.PendingChannelsResponse_PendingChannel
	for _, item := range pending.PendingOpenChannels {
		pendingChannels = append(pendingChannels, item.GetChannel())
	}
	for _, item := range pending.WaitingCloseChannels {
		pendingChannels = append(pendingChannels, item.GetChannel())
	}
	for _, item := range pending.PendingForceClosingChannels {
		pendingChannels = append(pendingChannels, item.GetChannel())
	}

	channels := make([]*fdb.Channel, 0, len(pendingChannels))
	for _, channel := range pendingChannels {
		if channel == nil {
			continue
		}

		chanPoint, err := fdb.NewChanPointFromString(channel.ChannelPoint)
		if err != nil {
			return nil, errors.Wrap(err, "Could not parse pending channel")
		}

		channels = append(channels, &fdb.Channel{
			ChanPoint: chanPoint,
			ToNode:    fdb.PubKey(channel.RemoteNodePub),
			Capacity:  channel.Capacity,
			Pending:   true,
		})
	}

	return channels, nil
}

// FeeRates returns the fees this node currently charges on each channel.
func (client *Client) FeeRates(ctx context.Context) ([]*fdb.FeeRate, error) {
	report, err := client.client.FeeReport(client.withMacaroon(ctx), &lnrpc.FeeReportRequest{})
	if err != nil {
		return nil, errors.Wrap(err, "Could not get fee report")
	}

	feeRates := make([]*fdb.FeeRate, 0, len(report.ChannelFees))
	for _, fee := range report.ChannelFees {
		chanPoint, err := fdb.NewChanPointFromString(fee.ChannelPoint)
		if err != nil {
			return nil, errors.Wrapf(err, "Could not parse fee report of channel %v", fee.ChanId)
		}

		feeRates = append(feeRates, &fdb.FeeRate{
			ChanPoint:   chanPoint,
			ChanId:      fdb.ChanId(fee.ChanId),
			FeeRatePpm:  fee.FeePerMil,
			BaseFeeMsat: big.NewInt(fee.BaseFeeMsat),
		})
	}

	return feeRates, nil
}

// ChannelPolicy returns both sides of the channel's announced policy. It
// returns fdb.ErrNotFound when the graph doesn't know the channel yet.
func (client *Client) ChannelPolicy(ctx context.Context, channel *fdb.Channel) (*fdb.ChannelPolicy, error) {
	if channel.ChanId == 0 {
		return nil, fdb.ErrNotFound
	}

	edge, err := client.client.GetChanInfo(client.withMacaroon(ctx), &lnrpc.ChanInfoRequest{
		ChanId: uint64(channel.ChanId),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fdb.ErrNotFound
		}

		return nil, errors.Wrapf(err, "Could not get channel info of %v", channel.ChanId)
	}

	policy := &fdb.ChannelPolicy{
		ChanPoint: channel.ChanPoint,
		ChanId:    fdb.ChanId(edge.ChannelId),
	}

	if edge.Node1Policy != nil {
		policy.Policies = append(policy.Policies, routingPolicy(edge.Node1Pub, edge.Node1Policy))
	}

	if edge.Node2Policy != nil {
		policy.Policies = append(policy.Policies, routingPolicy(edge.Node2Pub, edge.Node2Policy))
	}

	return policy, nil
}

func routingPolicy(pubKey string, policy *lnrpc.RoutingPolicy) *fdb.RoutingPolicy {
	return &fdb.RoutingPolicy{
		PubKey:           fdb.PubKey(pubKey),
		TimeLockDelta:    policy.TimeLockDelta,
		FeeBaseMsat:      policy.FeeBaseMsat,
		FeeRateMilliMsat: policy.FeeRateMilliMsat,
		Disabled:         policy.Disabled,
	}
}

// NodeAlias returns the alias a node announced, or an empty string for nodes
// missing from the graph.
func (client *Client) NodeAlias(ctx context.Context, pubKey fdb.PubKey) (string, error) {
	info, err := client.client.GetNodeInfo(client.withMacaroon(ctx), &lnrpc.NodeInfoRequest{
		PubKey: string(pubKey),
	})
	if err != nil {
		if isNotFound(err) {
			return "", nil
		}

		return "", errors.Wrapf(err, "Could not get node info of %v", pubKey)
	}

	return info.GetNode().GetAlias(), nil
}

// UpdateChannelFee sets the outgoing policy of a single channel.
func (client *Client) UpdateChannelFee(ctx context.Context, update *fdb.FeeUpdate) error {
	if update.From == "" {
		return errors.New("Expected public key of the policy side to update")
	}

	baseFeeMsat := client.defaultBaseFeeMsat
	if update.BaseFeeMsat != nil {
		if !update.BaseFeeMsat.IsInt64() || update.BaseFeeMsat.Sign() < 0 {
			return errors.Errorf("Base fee %v msat is out of range", update.BaseFeeMsat)
		}

		baseFeeMsat = update.BaseFeeMsat.Int64()
	}

	timeLockDelta := client.defaultTimeLockDelta
	if update.TimeLockDelta != nil {
		timeLockDelta = *update.TimeLockDelta
	}

	res, err := client.client.UpdateChannelPolicy(client.withMacaroon(ctx), &lnrpc.PolicyUpdateRequest{
		Scope: &lnrpc.PolicyUpdateRequest_ChanPoint{
			ChanPoint: &lnrpc.ChannelPoint{
				FundingTxid: &lnrpc.ChannelPoint_FundingTxidStr{
					FundingTxidStr: update.ChanPoint.TxId(),
				},
				OutputIndex: update.ChanPoint.OutputIndex(),
			},
		},
		BaseFeeMsat:   baseFeeMsat,
		FeeRatePpm:    update.FeeRatePpm,
		TimeLockDelta: timeLockDelta,
	})
	if err != nil {
		return errors.Wrapf(err, "Could not update channel policy of %v", update.ChanPoint)
	}

	if failed := res.GetFailedUpdates(); len(failed) > 0 {
		return errors.Errorf("Could not update channel policy of %v: %v (%v)",
			update.ChanPoint, failed[0].UpdateError, failed[0].Reason)
	}

	return nil
}

func isNotFound(err error) bool {
	if status.Code(err) == codes.NotFound {
		return true
	}

	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "edge not found") || strings.Contains(msg, "unable to find node")
}

func makeTlsCertFromPath(path string) (*x509.CertPool, error) {
	certBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("Could not read tls cert %v", path)
	}

	cert := x509.NewCertPool()
	if ok := cert.AppendCertsFromPEM(certBytes); ok {
		return cert, nil
	}

	// Some setups export the bare base64 body without the PEM armor.
	fullCertBytes := append([]byte("-----BEGIN CERTIFICATE-----\n"), certBytes...)
	fullCertBytes = append(fullCertBytes, []byte("\n-----END CERTIFICATE-----")...)
	if ok := cert.AppendCertsFromPEM(fullCertBytes); !ok {
		return nil, errors.New("Could not parse tls cert.")
	}

	return cert, nil
}

func makeMacaroonFromPath(path string) (string, error) {
	macaroonBytes, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Errorf("Could not read macaroon %v", path)
	}

	hexMacaroon := hex.EncodeToString(macaroonBytes)

	return hexMacaroon, nil
}
