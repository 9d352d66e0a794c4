package dns

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/route53"
)

// Route53API is the subset of the Route 53 client used for listing.
type Route53API interface {
	route53.ListHostedZonesAPIClient
	ListResourceRecordSets(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error)
}
