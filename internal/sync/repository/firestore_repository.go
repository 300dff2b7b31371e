package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	taskdomain "remindkit/internal/task/domain"
)

const (
	usersCollection    = "users"
	tasksSubcollection = "tasks"
	sharedCollection   = "shared_tasks"
)

// firestoreRemoteStore implements RemoteStore on Cloud Firestore.
//
// Layout: users/{ownerId}/tasks/{taskId} is the owner-private partition;
// shared_tasks/{taskId} is the shared partition visible to the owner and
// everyone in sharedWith.
type firestoreRemoteStore struct {
	client *firestore.Client
}

// NewFirestoreRemoteStore creates a Firestore-backed RemoteStore
func NewFirestoreRemoteStore(client *firestore.Client) RemoteStore {
	return &firestoreRemoteStore{client: client}
}

func (r *firestoreRemoteStore) privateDoc(ownerID, taskID string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(ownerID).Collection(tasksSubcollection).Doc(taskID)
}

func (r *firestoreRemoteStore) PutPrivate(ctx context.Context, ownerID string, task *taskdomain.Task) error {
	if _, err := r.privateDoc(ownerID, task.ID).Set(ctx, task); err != nil {
		return &TransportError{Op: "put private", Err: err}
	}
	return nil
}

func (r *firestoreRemoteStore) PutShared(ctx context.Context, task *taskdomain.Task) error {
	if _, err := r.client.Collection(sharedCollection).Doc(task.ID).Set(ctx, task); err != nil {
		return &TransportError{Op: "put shared", Err: err}
	}
	return nil
}

func (r *firestoreRemoteStore) DeleteShared(ctx context.Context, taskID string) error {
	if _, err := r.client.Collection(sharedCollection).Doc(taskID).Delete(ctx); err != nil {
		return &TransportError{Op: "delete shared", Err: err}
	}
	return nil
}

func (r *firestoreRemoteStore) FetchOwned(ctx context.Context, ownerID string) ([]*taskdomain.Task, error) {
	iter := r.client.Collection(usersCollection).Doc(ownerID).Collection(tasksSubcollection).Documents(ctx)
	tasks, err := collect(iter)
	if err != nil {
		return nil, &TransportError{Op: "fetch owned", Err: err}
	}
	return tasks, nil
}

func (r *firestoreRemoteStore) FetchSharedWith(ctx context.Context, userID string) ([]*taskdomain.Task, error) {
	iter := r.client.Collection(sharedCollection).
		Where("sharedWith", "array-contains", userID).
		Documents(ctx)
	tasks, err := collect(iter)
	if err != nil {
		return nil, &TransportError{Op: "fetch shared", Err: err}
	}
	return tasks, nil
}

func collect(iter *firestore.DocumentIterator) ([]*taskdomain.Task, error) {
	var tasks []*taskdomain.Task
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return tasks, nil
		}
		if err != nil {
			return nil, err
		}
		var task taskdomain.Task
		if err := doc.DataTo(&task); err != nil {
			return nil, err
		}
		if task.ID == "" {
			task.ID = doc.Ref.ID
		}
		tasks = append(tasks, &task)
	}
}
