package main

import (
	"context"
	"flag"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/mansoorceksport/repflow/internal/config"
	"github.com/mansoorceksport/repflow/internal/domain"
	"github.com/mansoorceksport/repflow/internal/repository"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Seeds random workout plans for one athlete from the exercise library.
// Run cmd/seed/exercises first.
func main() {
	athleteID := flag.String("athlete", "", "athlete user id the workouts are assigned to")
	count := flag.Int("count", 3, "number of workouts to create")
	seed := flag.Int64("seed", 0, "random seed (0 = random)")
	flag.Parse()

	if *athleteID == "" {
		log.Fatal("-athlete is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB.Database)
	exerciseRepo := repository.NewMongoExerciseRepository(db)
	workoutRepo := repository.NewMongoWorkoutRepository(db)

	library, err := exerciseRepo.List(ctx, nil)
	if err != nil {
		log.Fatalf("Failed to list exercises: %v", err)
	}
	if len(library) == 0 {
		log.Fatal("Exercise library is empty, run cmd/seed/exercises first")
	}

	faker := gofakeit.New(*seed)
	for i := 0; i < *count; i++ {
		workout := generateWorkout(faker, *athleteID, library)
		if err := workoutRepo.Create(ctx, workout); err != nil {
			log.Fatalf("Failed to create workout: %v", err)
		}
		log.Infof("Created workout %s %q (%d exercises)", workout.ID, workout.Name, len(workout.ExerciseSeries))
	}
}

var (
	workoutNames = []string{"Push Day", "Pull Day", "Leg Day", "Upper Body", "Lower Body", "Full Body", "Conditioning"}
	levels       = []string{"beginner", "intermediate", "advanced"}
	tempos       = []string{"", "3-1-1-0", "2-0-2-0", "4-1-1-1"}
)

func generateWorkout(faker *gofakeit.Faker, athleteID string, library []*domain.Exercise) *domain.WorkoutInProgress {
	n := faker.Number(3, 6)
	if n > len(library) {
		n = len(library)
	}

	picked := make([]*domain.Exercise, len(library))
	copy(picked, library)
	faker.ShuffleAnySlice(picked)
	picked = picked[:n]

	series := make([]*domain.ExerciseEntry, 0, n)
	for _, ex := range picked {
		series = append(series, &domain.ExerciseEntry{
			ExerciseID: ex.ID,
			Sets:       generateSets(faker, ex.Type),
			Tempo:      faker.RandomString(tempos),
			Tip:        faker.Sentence(6),
		})
	}

	return &domain.WorkoutInProgress{
		AthleteID:      athleteID,
		Name:           faker.RandomString(workoutNames),
		Level:          faker.RandomString(levels),
		ExerciseSeries: series,
	}
}

func generateSets(faker *gofakeit.Faker, t domain.ExerciseType) []*domain.SetEntry {
	var sets []*domain.SetEntry
	if t == domain.ExerciseTypeWeight && faker.Bool() {
		sets = append(sets, &domain.SetEntry{
			Type:            domain.SetTypeWarmUp,
			TargetReps:      intPtr(faker.Number(10, 15)),
			TargetWeight:    floatPtr(roundTo(faker.Float64Range(10, 30), 2.5)),
			RestTimeSeconds: 45,
		})
	}

	working := faker.Number(2, 4)
	for i := 0; i < working; i++ {
		set := &domain.SetEntry{
			Type:            domain.SetTypeWorking,
			RestTimeSeconds: faker.RandomInt([]int{0, 60, 90, 120}),
		}
		switch t {
		case domain.ExerciseTypeDuration:
			set.TargetDuration = intPtr(faker.RandomInt([]int{30, 45, 60}))
		case domain.ExerciseTypeReps:
			set.TargetReps = intPtr(faker.Number(8, 20))
		default:
			set.TargetReps = intPtr(faker.Number(5, 12))
			set.TargetWeight = floatPtr(roundTo(faker.Float64Range(20, 120), 2.5))
		}
		sets = append(sets, set)
	}
	return sets
}

func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
