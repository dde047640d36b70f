package tests

import (
	"context"
	"fmt"
	"testing"

	"backoffice-events/internal/adapters/mongodb"
	"backoffice-events/internal/app"

	"github.com/cucumber/godog"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestOrderCompletedEventProcessing(t *testing.T) {

	suite := godog.TestSuite{
		ScenarioInitializer: InitializeProcessOrderCompletedFeature,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/process_order_completed.feature"},
			TestingT: t, // Testing instance that will run subtests.
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeProcessOrderCompletedFeature(ctx *godog.ScenarioContext) {
	ctx.Before(beforeScenarioHook)
	ctx.Given(`^a running backoffice-events service$`, aRunningBackofficeEventsService)
	ctx.Given(`^a user in the directory:$`, aUserInTheDirectory)
	ctx.Given(`^an OrderCompleted event:$`, anEvent)
	ctx.When(`^the event is published$`, theEventIsPublished)
	ctx.When(`^the same event is published again$`, theSameEventIsPublishedAgain)
	ctx.Then(`^the backoffice-events service produces the following log:$`, theServiceProducesTheFollowingLog)
	ctx.Then(`^the user "([^"]*)" has (\d+) points$`, theUserHasPoints)
	ctx.Then(`^exactly one points history entry exists for order "([^"]*)"$`, exactlyOnePointsHistoryEntryExists)
	ctx.After(afterScenarioHook)
}

func theUserHasPoints(ctx context.Context, userID string, points int) (context.Context, error) {
	client, err := getMongodbClient()
	if err != nil {
		return ctx, err
	}

	coll := client.Database(app.MongoDBName).Collection(app.MongoDBUsersCollection)

	var user mongodb.UserBSON
	err = coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return ctx, fmt.Errorf("failed retrieving user %s: %w", userID, err)
	}

	if user.Points != int64(points) {
		return ctx, fmt.Errorf("expected user points to be %d, but got %d", points, user.Points)
	}

	return ctx, nil
}

func exactlyOnePointsHistoryEntryExists(ctx context.Context, orderID string) (context.Context, error) {
	client, err := getMongodbClient()
	if err != nil {
		return ctx, err
	}

	coll := client.Database(app.MongoDBName).Collection(app.MongoDBPointsHistoryCollection)

	count, err := coll.CountDocuments(ctx, bson.M{"orderId": orderID})
	if err != nil {
		return ctx, fmt.Errorf("failed counting points history entries: %w", err)
	}
	if count != 1 {
		return ctx, fmt.Errorf("expected exactly one points history entry for order %s, but found %d", orderID, count)
	}

	return ctx, nil
}
