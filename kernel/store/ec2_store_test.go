package store

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/openziti/virgo/kernel/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEc2 struct {
	ec2iface.EC2API

	templates   []*ec2.LaunchTemplate
	reservation *ec2.Reservation
	pages       []*ec2.DescribeInstancesOutput
	statuses    []*ec2.InstanceStatus
	err         error

	templateInputs  []*ec2.DescribeLaunchTemplatesInput
	runInputs       []*ec2.RunInstancesInput
	tagInputs       []*ec2.CreateTagsInput
	instanceInputs  []*ec2.DescribeInstancesInput
	statusInputs    []*ec2.DescribeInstanceStatusInput
	terminateInputs []*ec2.TerminateInstancesInput
}

func (f *fakeEc2) DescribeLaunchTemplatesPagesWithContext(_ aws.Context, input *ec2.DescribeLaunchTemplatesInput, fn func(*ec2.DescribeLaunchTemplatesOutput, bool) bool, _ ...request.Option) error {
	f.templateInputs = append(f.templateInputs, input)
	if f.err != nil {
		return f.err
	}
	fn(&ec2.DescribeLaunchTemplatesOutput{LaunchTemplates: f.templates}, true)
	return nil
}

func (f *fakeEc2) RunInstancesWithContext(_ aws.Context, input *ec2.RunInstancesInput, _ ...request.Option) (*ec2.Reservation, error) {
	f.runInputs = append(f.runInputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return f.reservation, nil
}

func (f *fakeEc2) CreateTagsWithContext(_ aws.Context, input *ec2.CreateTagsInput, _ ...request.Option) (*ec2.CreateTagsOutput, error) {
	f.tagInputs = append(f.tagInputs, input)
	return &ec2.CreateTagsOutput{}, f.err
}

func (f *fakeEc2) DescribeInstancesPagesWithContext(_ aws.Context, input *ec2.DescribeInstancesInput, fn func(*ec2.DescribeInstancesOutput, bool) bool, _ ...request.Option) error {
	f.instanceInputs = append(f.instanceInputs, input)
	if f.err != nil {
		return f.err
	}
	for n, page := range f.pages {
		if !fn(page, n == len(f.pages)-1) {
			break
		}
	}
	return nil
}

func (f *fakeEc2) DescribeInstanceStatusPagesWithContext(_ aws.Context, input *ec2.DescribeInstanceStatusInput, fn func(*ec2.DescribeInstanceStatusOutput, bool) bool, _ ...request.Option) error {
	f.statusInputs = append(f.statusInputs, input)
	if f.err != nil {
		return f.err
	}
	fn(&ec2.DescribeInstanceStatusOutput{InstanceStatuses: f.statuses}, true)
	return nil
}

func (f *fakeEc2) TerminateInstancesWithContext(_ aws.Context, input *ec2.TerminateInstancesInput, _ ...request.Option) (*ec2.TerminateInstancesOutput, error) {
	f.terminateInputs = append(f.terminateInputs, input)
	return &ec2.TerminateInstancesOutput{}, f.err
}

func ownedInstance(id, mode, address, state string) *ec2.Instance {
	i := &ec2.Instance{
		InstanceId: aws.String(id),
		State:      &ec2.InstanceState{Name: aws.String(state)},
		Tags:       []*ec2.Tag{{Key: aws.String("virgo:game"), Value: aws.String(mode)}},
	}
	if address != "" {
		i.PublicIpAddress = aws.String(address)
	}
	return i
}

func assertOwnershipFilter(t *testing.T, filters []*ec2.Filter) {
	t.Helper()
	for _, f := range filters {
		if aws.StringValue(f.Name) == "tag:virgo:game" {
			assert.Equal(t, []string{"*"}, aws.StringValueSlice(f.Values))
			return
		}
	}
	t.Errorf("ownership filter missing from %v", filters)
}

func TestEc2Store_DescribeModes(t *testing.T) {
	api := &fakeEc2{templates: []*ec2.LaunchTemplate{
		{LaunchTemplateName: aws.String("deathmatch")},
		{LaunchTemplateName: aws.String("ctf")},
	}}
	s := NewEc2Store(api, model.NewOwnership(""))

	modes, err := s.DescribeModes(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"deathmatch", "ctf"}, model.ModeNames(modes))

	require.Len(t, api.templateInputs, 1)
	assert.Nil(t, api.templateInputs[0].LaunchTemplateNames)
	assertOwnershipFilter(t, api.templateInputs[0].Filters)

	_, err = s.DescribeModes(context.Background(), []string{"deathmatch"})
	require.NoError(t, err)
	assert.Equal(t, []string{"deathmatch"}, aws.StringValueSlice(api.templateInputs[1].LaunchTemplateNames))
}

func TestEc2Store_RunAndTag(t *testing.T) {
	api := &fakeEc2{reservation: &ec2.Reservation{Instances: []*ec2.Instance{{
		InstanceId: aws.String("i-0001"),
		State:      &ec2.InstanceState{Name: aws.String("pending")},
	}}}}
	s := NewEc2Store(api, model.NewOwnership(""))

	instances, err := s.RunInstance(context.Background(), "deathmatch")
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, model.ManagedInstance{Id: "i-0001", Mode: "deathmatch", State: "pending"}, instances[0])

	run := api.runInputs[0]
	assert.Equal(t, "deathmatch", aws.StringValue(run.LaunchTemplate.LaunchTemplateName))
	assert.Equal(t, int64(1), aws.Int64Value(run.MinCount))
	assert.Equal(t, int64(1), aws.Int64Value(run.MaxCount))

	require.NoError(t, s.TagOwned(context.Background(), []string{"i-0001"}, "deathmatch"))
	tag := api.tagInputs[0]
	assert.Equal(t, []string{"i-0001"}, aws.StringValueSlice(tag.Resources))
	require.Len(t, tag.Tags, 1)
	assert.Equal(t, "virgo:game", aws.StringValue(tag.Tags[0].Key))
	assert.Equal(t, "deathmatch", aws.StringValue(tag.Tags[0].Value))
}

func TestEc2Store_DescribeInstances(t *testing.T) {
	api := &fakeEc2{pages: []*ec2.DescribeInstancesOutput{
		{Reservations: []*ec2.Reservation{{Instances: []*ec2.Instance{
			ownedInstance("i-0001", "deathmatch", "1.2.3.4", "running"),
		}}}},
		{Reservations: []*ec2.Reservation{{Instances: []*ec2.Instance{
			ownedInstance("i-0002", "ctf", "", "running"),
		}}}},
	}}
	s := NewEc2Store(api, model.NewOwnership(""))

	instances, err := s.DescribeInstances(context.Background(), "running")
	require.NoError(t, err)
	assert.Equal(t, []model.ManagedInstance{
		{Id: "i-0001", Mode: "deathmatch", PublicAddress: "1.2.3.4", State: "running"},
		{Id: "i-0002", Mode: "ctf", State: "running"},
	}, instances)

	filters := api.instanceInputs[0].Filters
	assertOwnershipFilter(t, filters)
	assert.Equal(t, "instance-state-name", aws.StringValue(filters[0].Name))
	assert.Equal(t, []string{"running"}, aws.StringValueSlice(filters[0].Values))
}

func TestEc2Store_DescribeHealth(t *testing.T) {
	api := &fakeEc2{statuses: []*ec2.InstanceStatus{
		{InstanceId: aws.String("i-0001"), InstanceStatus: &ec2.InstanceStatusSummary{Status: aws.String("impaired")}},
		{InstanceId: aws.String("i-0002")},
	}}
	s := NewEc2Store(api, model.NewOwnership(""))

	health, err := s.DescribeHealth(context.Background(), []string{"i-0001", "i-0002"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"i-0001": "impaired"}, health)
	assert.Equal(t, []string{"i-0001", "i-0002"}, aws.StringValueSlice(api.statusInputs[0].InstanceIds))
}

func TestEc2Store_DescribeHealth_NoIds(t *testing.T) {
	api := &fakeEc2{}
	s := NewEc2Store(api, model.NewOwnership(""))

	health, err := s.DescribeHealth(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, health)
	assert.Empty(t, api.statusInputs)
}

func TestEc2Store_TerminateInstances(t *testing.T) {
	api := &fakeEc2{}
	s := NewEc2Store(api, model.NewOwnership(""))

	require.NoError(t, s.TerminateInstances(context.Background(), []string{"i-0001", "i-0002"}))
	require.Len(t, api.terminateInputs, 1)
	assert.Equal(t, []string{"i-0001", "i-0002"}, aws.StringValueSlice(api.terminateInputs[0].InstanceIds))
}

func TestEc2Store_TerminateInstances_Empty(t *testing.T) {
	api := &fakeEc2{}
	s := NewEc2Store(api, model.NewOwnership(""))

	require.NoError(t, s.TerminateInstances(context.Background(), []string{}))
	assert.Empty(t, api.terminateInputs)
}

func TestEc2Store_PassesProviderErrors(t *testing.T) {
	api := &fakeEc2{err: awserr.New("InvalidInstanceID.Malformed", "Invalid id: \"bogus\"", nil)}
	s := NewEc2Store(api, model.NewOwnership(""))

	err := s.TerminateInstances(context.Background(), []string{"bogus"})
	var aerr awserr.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "InvalidInstanceID.Malformed", aerr.Code())
}

func TestEc2Store_Closed(t *testing.T) {
	api := &fakeEc2{}
	s := NewEc2Store(api, model.NewOwnership(""))
	require.NoError(t, s.Close())

	_, err := s.DescribeInstances(context.Background(), "running")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Empty(t, api.instanceInputs)
}

func TestEc2Store_CustomOwnershipTag(t *testing.T) {
	api := &fakeEc2{pages: []*ec2.DescribeInstancesOutput{{Reservations: []*ec2.Reservation{{Instances: []*ec2.Instance{{
		InstanceId: aws.String("i-0009"),
		Tags:       []*ec2.Tag{{Key: aws.String("arena"), Value: aws.String("duel")}},
	}}}}}}}
	s := NewEc2Store(api, model.NewOwnership("arena"))

	instances, err := s.DescribeInstances(context.Background())
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, "duel", instances[0].Mode)
	assert.Equal(t, "tag:arena", aws.StringValue(api.instanceInputs[0].Filters[0].Name))
}
