package store

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/michaelquigley/pfxlog"
	"github.com/openziti/virgo/kernel/model"
	"github.com/pkg/errors"
)

const ProviderEc2 = "ec2"

func init() {
	RegisterProviderType(ProviderEc2, OpenEc2)
}

// Ec2Store talks to the EC2 API of a single region. Provider errors are returned as the
// awserr.Error values produced by the SDK so callers can translate them by code.
type Ec2Store struct {
	api       ec2iface.EC2API
	ownership model.Ownership
	mu        sync.RWMutex
	closed    bool
}

func OpenEc2(cfg *model.VirgoConfig) (Provider, error) {
	awsCfg := aws.NewConfig().WithRegion(cfg.Region)
	if cfg.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.Endpoint)
	}
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsCfg,
		Profile:           cfg.Profile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to create aws session")
	}
	pfxlog.Logger().Debugf("opened ec2 provider for region [%s]", cfg.Region)
	return NewEc2Store(ec2.New(sess), cfg.Ownership()), nil
}

func NewEc2Store(api ec2iface.EC2API, ownership model.Ownership) *Ec2Store {
	return &Ec2Store{api: api, ownership: ownership}
}

func (s *Ec2Store) DescribeModes(ctx context.Context, names []string) ([]model.Mode, error) {
	api, err := s.client()
	if err != nil {
		return nil, err
	}
	input := &ec2.DescribeLaunchTemplatesInput{Filters: []*ec2.Filter{s.ownershipFilter()}}
	if len(names) > 0 {
		input.LaunchTemplateNames = aws.StringSlice(names)
	}
	var modes []model.Mode
	err = api.DescribeLaunchTemplatesPagesWithContext(ctx, input, func(page *ec2.DescribeLaunchTemplatesOutput, _ bool) bool {
		for _, t := range page.LaunchTemplates {
			modes = append(modes, model.Mode{Name: aws.StringValue(t.LaunchTemplateName)})
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return modes, nil
}

func (s *Ec2Store) RunInstance(ctx context.Context, mode string) ([]model.ManagedInstance, error) {
	api, err := s.client()
	if err != nil {
		return nil, err
	}
	reservation, err := api.RunInstancesWithContext(ctx, &ec2.RunInstancesInput{
		LaunchTemplate: &ec2.LaunchTemplateSpecification{LaunchTemplateName: aws.String(mode)},
		MinCount:       aws.Int64(1),
		MaxCount:       aws.Int64(1),
	})
	if err != nil {
		return nil, err
	}
	instances := make([]model.ManagedInstance, 0, len(reservation.Instances))
	for _, i := range reservation.Instances {
		instance := s.toManaged(i)
		// not tagged yet; the mode is known from the request
		instance.Mode = mode
		instances = append(instances, instance)
	}
	return instances, nil
}

func (s *Ec2Store) TagOwned(ctx context.Context, ids []string, mode string) error {
	api, err := s.client()
	if err != nil {
		return err
	}
	_, err = api.CreateTagsWithContext(ctx, &ec2.CreateTagsInput{
		Resources: aws.StringSlice(ids),
		Tags:      []*ec2.Tag{{Key: aws.String(s.ownership.TagKey), Value: aws.String(mode)}},
	})
	return err
}

func (s *Ec2Store) DescribeInstances(ctx context.Context, states ...string) ([]model.ManagedInstance, error) {
	api, err := s.client()
	if err != nil {
		return nil, err
	}
	filters := []*ec2.Filter{s.ownershipFilter()}
	if len(states) > 0 {
		filters = append([]*ec2.Filter{{Name: aws.String("instance-state-name"), Values: aws.StringSlice(states)}}, filters...)
	}
	var instances []model.ManagedInstance
	err = api.DescribeInstancesPagesWithContext(ctx, &ec2.DescribeInstancesInput{Filters: filters}, func(page *ec2.DescribeInstancesOutput, _ bool) bool {
		for _, r := range page.Reservations {
			for _, i := range r.Instances {
				instances = append(instances, s.toManaged(i))
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return instances, nil
}

func (s *Ec2Store) DescribeHealth(ctx context.Context, ids []string) (map[string]string, error) {
	health := make(map[string]string, len(ids))
	if len(ids) == 0 {
		// an empty id list would describe every instance in the account
		return health, nil
	}
	api, err := s.client()
	if err != nil {
		return nil, err
	}
	input := &ec2.DescribeInstanceStatusInput{InstanceIds: aws.StringSlice(ids)}
	err = api.DescribeInstanceStatusPagesWithContext(ctx, input, func(page *ec2.DescribeInstanceStatusOutput, _ bool) bool {
		for _, st := range page.InstanceStatuses {
			if st.InstanceStatus == nil || st.InstanceStatus.Status == nil {
				continue
			}
			health[aws.StringValue(st.InstanceId)] = aws.StringValue(st.InstanceStatus.Status)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return health, nil
}

func (s *Ec2Store) TerminateInstances(ctx context.Context, ids []string) error {
	api, err := s.client()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		// EC2 rejects an empty InstanceIds list with MissingParameter
		pfxlog.Logger().Debug("no instances to terminate, skipping ec2 call")
		return nil
	}
	_, err = api.TerminateInstancesWithContext(ctx, &ec2.TerminateInstancesInput{InstanceIds: aws.StringSlice(ids)})
	return err
}

func (s *Ec2Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Ec2Store) client() (ec2iface.EC2API, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.api, nil
}

func (s *Ec2Store) ownershipFilter() *ec2.Filter {
	return &ec2.Filter{
		Name:   aws.String(s.ownership.FilterName()),
		Values: aws.StringSlice([]string{model.FilterAnyValue}),
	}
}

func (s *Ec2Store) toManaged(i *ec2.Instance) model.ManagedInstance {
	tags := make(map[string]string, len(i.Tags))
	for _, t := range i.Tags {
		tags[aws.StringValue(t.Key)] = aws.StringValue(t.Value)
	}
	instance := model.ManagedInstance{
		Id:            aws.StringValue(i.InstanceId),
		Mode:          s.ownership.ModeOf(tags),
		PublicAddress: aws.StringValue(i.PublicIpAddress),
	}
	if i.State != nil {
		instance.State = aws.StringValue(i.State.Name)
	}
	return instance
}
