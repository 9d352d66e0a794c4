package dns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"

	"github.com/lite-lake/dnswatch/internal/domain"
	"github.com/lite-lake/dnswatch/internal/domain/entity"
	"github.com/lite-lake/dnswatch/internal/domain/retry"
	"github.com/lite-lake/dnswatch/internal/infrastructure/logger"
)

// Route 53 is a global service; any region resolves the same endpoint.
const defaultRoute53Region = "us-east-1"

type Route53Source struct {
	client    Route53API
	retryOpts []retry.Option
	pageSize  int32
}

type Route53Option func(*Route53Source)

func WithRetry(opts ...retry.Option) Route53Option {
	return func(s *Route53Source) {
		s.retryOpts = append(s.retryOpts, opts...)
	}
}

func WithPageSize(n int32) Route53Option {
	return func(s *Route53Source) {
		s.pageSize = n
	}
}

func NewRoute53Source(client Route53API, opts ...Route53Option) *Route53Source {
	s := &Route53Source{
		client:    client,
		retryOpts: []retry.Option{retry.WithIsRetryable(IsRetryableDNSError)},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRoute53SourceFromConfig builds a client from the default AWS credential
// chain, optionally pinned to a shared-config profile.
func NewRoute53SourceFromConfig(ctx context.Context, region, profile string, opts ...Route53Option) (*Route53Source, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	if profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	if awsCfg.Region == "" {
		awsCfg.Region = defaultRoute53Region
	}

	return NewRoute53Source(route53.NewFromConfig(awsCfg), opts...), nil
}

func (s *Route53Source) Name() string {
	return "route53"
}

// FetchSnapshot lists every hosted zone and all of its record sets. Any
// failure aborts the whole fetch; a partial snapshot is never returned.
func (s *Route53Source) FetchSnapshot(ctx context.Context) (*entity.Snapshot, error) {
	log := logger.FromContext(ctx)

	zones, err := s.listHostedZones(ctx)
	if err != nil {
		return nil, domain.NewOpError("list hosted zones", domain.ErrFetchFailed, err)
	}

	keys := zoneKeys(zones)
	snapshot := entity.NewSnapshot()
	for i, zone := range zones {
		zoneID := aws.ToString(zone.Id)
		records, err := s.listRecords(ctx, zoneID)
		if err != nil {
			return nil, domain.NewOpError(fmt.Sprintf("list records for zone %s", keys[i]), domain.ErrFetchFailed, err)
		}

		snapshot.AddZone(keys[i])
		for _, r := range records {
			snapshot.AddRecord(keys[i], r)
		}
		log.Debug("fetched zone", "zone", keys[i], "zone_id", zoneID, "records", len(records))
	}

	return snapshot, nil
}

func (s *Route53Source) listHostedZones(ctx context.Context) ([]types.HostedZone, error) {
	input := &route53.ListHostedZonesInput{}
	if s.pageSize > 0 {
		input.MaxItems = aws.Int32(s.pageSize)
	}

	var zones []types.HostedZone
	p := route53.NewListHostedZonesPaginator(s.client, input)
	for p.HasMorePages() {
		page, err := retry.DoWithResult(ctx, func() (*route53.ListHostedZonesOutput, error) {
			return p.NextPage(ctx)
		}, s.retryOpts...)
		if err != nil {
			return nil, err
		}
		for _, z := range page.HostedZones {
			if z.Id == nil || z.Name == nil {
				return nil, fmt.Errorf("%w: hosted zone without id or name", domain.ErrInvalidResponse)
			}
			zones = append(zones, z)
		}
	}
	return zones, nil
}

func (s *Route53Source) listRecords(ctx context.Context, zoneID string) ([]entity.Record, error) {
	input := &route53.ListResourceRecordSetsInput{HostedZoneId: aws.String(zoneID)}
	if s.pageSize > 0 {
		input.MaxItems = aws.Int32(s.pageSize)
	}

	records := []entity.Record{}
	for {
		page, err := retry.DoWithResult(ctx, func() (*route53.ListResourceRecordSetsOutput, error) {
			return s.client.ListResourceRecordSets(ctx, input)
		}, s.retryOpts...)
		if err != nil {
			return nil, err
		}

		for _, rrs := range page.ResourceRecordSets {
			records = append(records, convertRecordSet(rrs))
		}

		if !page.IsTruncated {
			return records, nil
		}
		if page.NextRecordName == nil {
			return nil, fmt.Errorf("%w: truncated page without next record name", domain.ErrInvalidResponse)
		}
		if aws.ToString(page.NextRecordName) == aws.ToString(input.StartRecordName) &&
			page.NextRecordType == input.StartRecordType &&
			aws.ToString(page.NextRecordIdentifier) == aws.ToString(input.StartRecordIdentifier) {
			return nil, fmt.Errorf("%w: pagination did not advance", domain.ErrInvalidResponse)
		}

		input = &route53.ListResourceRecordSetsInput{
			HostedZoneId:          input.HostedZoneId,
			MaxItems:              input.MaxItems,
			StartRecordName:       page.NextRecordName,
			StartRecordType:       page.NextRecordType,
			StartRecordIdentifier: page.NextRecordIdentifier,
		}
	}
}

func convertRecordSet(rrs types.ResourceRecordSet) entity.Record {
	r := entity.Record{
		Name:   entity.DecodeName(aws.ToString(rrs.Name)),
		Type:   string(rrs.Type),
		TTL:    aws.ToInt64(rrs.TTL),
		Values: make([]string, 0, len(rrs.ResourceRecords)),
	}
	for _, rr := range rrs.ResourceRecords {
		r.Values = append(r.Values, aws.ToString(rr.Value))
	}
	if rrs.AliasTarget != nil {
		r.AliasTarget = &entity.AliasTarget{
			DNSName:              entity.DecodeName(aws.ToString(rrs.AliasTarget.DNSName)),
			HostedZoneID:         aws.ToString(rrs.AliasTarget.HostedZoneId),
			EvaluateTargetHealth: rrs.AliasTarget.EvaluateTargetHealth,
		}
	}
	r.Normalize()
	return r
}

// zoneKeys names each zone by its canonical name. Names shared by several
// hosted zones (a public and a private zone, say) get the zone id appended
// so each key stays unique and stable across scans.
func zoneKeys(zones []types.HostedZone) []string {
	counts := make(map[string]int, len(zones))
	names := make([]string, len(zones))
	for i, z := range zones {
		names[i] = entity.DecodeName(aws.ToString(z.Name))
		counts[names[i]]++
	}

	keys := make([]string, len(zones))
	for i, z := range zones {
		keys[i] = names[i]
		if counts[names[i]] > 1 {
			keys[i] = fmt.Sprintf("%s (%s)", names[i], aws.ToString(z.Id))
		}
	}
	return keys
}
