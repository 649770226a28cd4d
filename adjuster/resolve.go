package adjuster

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/go-errors/errors"
	log "github.com/sirupsen/logrus"
	"github.com/the-lightning-land/feeadjust/fdb"
)

var (
	ErrNoMatchingPeer        = errors.New("No peer matches the query")
	ErrMultipleMatchingPeers = errors.New("Multiple peers match the query")
	ErrAliasUnavailable      = errors.New("Could not get the alias of every peer")
)

// PeerAlias is a channel partner and the alias it announced. Alias is empty
// when the node doesn't know one. Unavailable is set when the lookup failed.
type PeerAlias struct {
	PubKey      fdb.PubKey
	Alias       string
	Unavailable bool
}

// uniquePeers returns the distinct partner keys of the channels in the order
// they first appear.
func uniquePeers(channels []*fdb.Channel) []fdb.PubKey {
	seen := make(map[fdb.PubKey]struct{})

	var peers []fdb.PubKey
	for _, channel := range channels {
		if _, ok := seen[channel.ToNode]; ok {
			continue
		}

		seen[channel.ToNode] = struct{}{}
		peers = append(peers, channel.ToNode)
	}

	return peers
}

// resolveAliases looks up the alias of every channel partner once. A failed
// lookup leaves that peer without alias and marked unavailable.
func (a *Adjuster) resolveAliases(ctx context.Context, node Node, logger log.FieldLogger,
	channels []*fdb.Channel) []PeerAlias {

	peers := uniquePeers(channels)
	aliases := make([]PeerAlias, len(peers))

	group := a.pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for i, peer := range peers {
		i, peer := i, peer
		aliases[i] = PeerAlias{PubKey: peer, Unavailable: true}

		group.Submit(func() {
			alias, err := node.NodeAlias(groupCtx, peer)
			if err != nil {
				logger.WithError(err).WithField("peer", peer).Warn("Could not get peer alias")
				return
			}

			aliases[i] = PeerAlias{PubKey: peer, Alias: alias}
		})
	}

	if err := group.Wait(); err != nil {
		logger.WithError(err).Warn("Alias lookup was interrupted")
	}

	return aliases
}

func isPubKey(query string) bool {
	if len(query) != 66 {
		return false
	}

	if !strings.HasPrefix(query, "02") && !strings.HasPrefix(query, "03") {
		return false
	}

	_, err := hex.DecodeString(query)

	return err == nil
}

// FindKey resolves a public key or a case-insensitive alias fragment to the
// public key of one of the peers. An alias query is only resolved when the
// alias of every peer is known.
func FindKey(peers []PeerAlias, query string) (fdb.PubKey, error) {
	query = strings.TrimSpace(query)

	if isPubKey(query) {
		return fdb.PubKey(strings.ToLower(query)), nil
	}

	needle := strings.ToLower(query)

	var matches []fdb.PubKey
	for _, peer := range peers {
		if peer.Unavailable {
			return "", ErrAliasUnavailable
		}

		if peer.Alias != "" && strings.Contains(strings.ToLower(peer.Alias), needle) {
			matches = append(matches, peer.PubKey)
		}
	}

	switch len(matches) {
	case 0:
		return "", ErrNoMatchingPeer
	case 1:
		return matches[0], nil
	default:
		return "", ErrMultipleMatchingPeers
	}
}

// resolveTargets resolves every query against the peer aliases. Queries
// that can't be resolved stay in the result without a public key.
func resolveTargets(logger log.FieldLogger, peers []PeerAlias, queries []string) []fdb.PeerTarget {
	targets := make([]fdb.PeerTarget, 0, len(queries))
	for _, query := range queries {
		target := fdb.PeerTarget{Query: query}

		pubKey, err := FindKey(peers, query)
		if err != nil {
			logger.WithError(err).WithField("query", query).Warn("Could not resolve peer")
		} else {
			target.PubKey = pubKey
		}

		targets = append(targets, target)
	}

	return targets
}
