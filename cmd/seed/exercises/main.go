package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mansoorceksport/repflow/internal/config"
	"github.com/mansoorceksport/repflow/internal/domain"
	"github.com/mansoorceksport/repflow/internal/repository"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Seeds the exercise library. Re-running it updates existing entries by name.
func main() {
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
	repo := repository.NewMongoExerciseRepository(db)

	exercises := []domain.Exercise{
		// Legs
		{Name: "Barbell Squat", Type: domain.ExerciseTypeWeight, MuscleGroup: "Legs", Equipment: "Barbell", VideoURL: "https://www.youtube.com/watch?v=SW_C1A-rejs"},
		{Name: "Leg Press", Type: domain.ExerciseTypeWeight, MuscleGroup: "Legs", Equipment: "Machine", VideoURL: "https://www.youtube.com/watch?v=IZxyjW7MPJQ"},
		{Name: "Walking Lunge", Type: domain.ExerciseTypeReps, MuscleGroup: "Legs", Equipment: "Bodyweight/Dumbbell", VideoURL: "https://www.youtube.com/watch?v=D7KaRcUTQeE"},
		{Name: "Leg Extension", Type: domain.ExerciseTypeWeight, MuscleGroup: "Legs", Equipment: "Machine", VideoURL: "https://www.youtube.com/watch?v=YyvSfVLYZqo"},
		{Name: "Lying Leg Curl", Type: domain.ExerciseTypeWeight, MuscleGroup: "Legs", Equipment: "Machine", VideoURL: "https://www.youtube.com/watch?v=1Tq3QdYUuHs"},
		{Name: "Romanian Deadlift", Type: domain.ExerciseTypeWeight, MuscleGroup: "Legs (Hamstrings)", Equipment: "Barbell", VideoURL: "https://www.youtube.com/watch?v=JCXUYuzwZ_M"},
		{Name: "Calf Raise", Type: domain.ExerciseTypeWeight, MuscleGroup: "Legs (Calves)", Equipment: "Machine", VideoURL: "https://www.youtube.com/watch?v=3UWi44yN-wM"},
		{Name: "Goblet Squat", Type: domain.ExerciseTypeWeight, MuscleGroup: "Legs", Equipment: "Dumbbell", VideoURL: "https://www.youtube.com/watch?v=MeIiGibT6X0"},
		{Name: "Bulgarian Split Squat", Type: domain.ExerciseTypeWeight, MuscleGroup: "Legs", Equipment: "Dumbbell", VideoURL: "https://www.youtube.com/watch?v=9FOMyxA3Lw4"},
		{Name: "Glute Bridge", Type: domain.ExerciseTypeReps, MuscleGroup: "Legs (Glutes)", Equipment: "Bodyweight", VideoURL: "https://www.youtube.com/watch?v=vOvRFsGMMqo"},

		// Chest
		{Name: "Barbell Bench Press", Type: domain.ExerciseTypeWeight, MuscleGroup: "Chest", Equipment: "Barbell", VideoURL: "https://www.youtube.com/watch?v=EUjh50tLlBo"},
		{Name: "Incline Dumbbell Press", Type: domain.ExerciseTypeWeight, MuscleGroup: "Chest", Equipment: "Dumbbell", VideoURL: "https://www.youtube.com/watch?v=8iPEnn-ltC8"},
		{Name: "Push Up", Type: domain.ExerciseTypeReps, MuscleGroup: "Chest", Equipment: "Bodyweight", VideoURL: "https://www.youtube.com/watch?v=IODxDxX7oi4"},
		{Name: "Cable Fly", Type: domain.ExerciseTypeWeight, MuscleGroup: "Chest", Equipment: "Cable", VideoURL: "https://www.youtube.com/watch?v=I-Ue34qLxc4"},
		{Name: "Dips", Type: domain.ExerciseTypeReps, MuscleGroup: "Chest/Triceps", Equipment: "Bodyweight", VideoURL: "https://www.youtube.com/watch?v=SwDers3SMZ4"},
		{Name: "Machine Chest Press", Type: domain.ExerciseTypeWeight, MuscleGroup: "Chest", Equipment: "Machine", VideoURL: "https://www.youtube.com/watch?v=x0X6V1-lVqM"},
		{Name: "Pec Deck", Type: domain.ExerciseTypeWeight, MuscleGroup: "Chest", Equipment: "Machine", VideoURL: "https://www.youtube.com/watch?v=O-5G_Kk9tI4"},
		{Name: "Decline Bench Press", Type: domain.ExerciseTypeWeight, MuscleGroup: "Chest", Equipment: "Barbell", VideoURL: "https://www.youtube.com/watch?v=n1uA2MEAPIU"},
		{Name: "Svend Press", Type: domain.ExerciseTypeWeight, MuscleGroup: "Chest", Equipment: "Plate", VideoURL: "https://www.youtube.com/watch?v=tC3v9W4Gf3Y"},
		{Name: "Landmine Press", Type: domain.ExerciseTypeWeight, MuscleGroup: "Chest", Equipment: "Barbell", VideoURL: "https://www.youtube.com/watch?v=TAsJgY2P7o8"},

		// Back
		{Name: "Pull Up", Type: domain.ExerciseTypeReps, MuscleGroup: "Back", Equipment: "Bodyweight", VideoURL: "https://www.youtube.com/watch?v=eGo4IYlbE5g"},
		{Name: "Lat Pulldown", Type: domain.ExerciseTypeWeight, MuscleGroup: "Back", Equipment: "Cable", VideoURL: "https://www.youtube.com/watch?v=CAwf7n6Luuc"},
		{Name: "Barbell Row", Type: domain.ExerciseTypeWeight, MuscleGroup: "Back", Equipment: "Barbell", VideoURL: "https://www.youtube.com/watch?v=DgyslsszCQ0"},
		{Name: "Seated Cable Row", Type: domain.ExerciseTypeWeight, MuscleGroup: "Back", Equipment: "Cable", VideoURL: "https://www.youtube.com/watch?v=GZbfZ033f74"},
		{Name: "Single Arm Dumbbell Row", Type: domain.ExerciseTypeWeight, MuscleGroup: "Back", Equipment: "Dumbbell", VideoURL: "https://www.youtube.com/watch?v=dFzUjzuWss0"},
		{Name: "Deadlift", Type: domain.ExerciseTypeWeight, MuscleGroup: "Back/Legs", Equipment: "Barbell", VideoURL: "https://www.youtube.com/watch?v=U1H1VG9Uh50"},
		{Name: "Face Pull", Type: domain.ExerciseTypeWeight, MuscleGroup: "Back (Rear Delts)", Equipment: "Cable", VideoURL: "https://www.youtube.com/watch?v=ntBwG1E3Pzs"},
		{Name: "T-Bar Row", Type: domain.ExerciseTypeWeight, MuscleGroup: "Back", Equipment: "Barbell", VideoURL: "https://www.youtube.com/watch?v=j3Igk5nyZE4"},
		{Name: "Hyperextension", Type: domain.ExerciseTypeReps, MuscleGroup: "Back (Lower)", Equipment: "Machine", VideoURL: "https://www.youtube.com/watch?v=5_Ej9mH-K6E"},
		{Name: "Straight Arm Pulldown", Type: domain.ExerciseTypeWeight, MuscleGroup: "Back", Equipment: "Cable", VideoURL: "https://www.youtube.com/watch?v=vV_uD6X8fMc"},

		// Shoulders
		{Name: "Overhead Press", Type: domain.ExerciseTypeWeight, MuscleGroup: "Shoulders", Equipment: "Barbell", VideoURL: "https://www.youtube.com/watch?v=HzIiInu578Q"},
		{Name: "Dumbbell Shoulder Press", Type: domain.ExerciseTypeWeight, MuscleGroup: "Shoulders", Equipment: "Dumbbell", VideoURL: "https://www.youtube.com/watch?v=1jYq9QQEWqE"},
		{Name: "Lateral Raise", Type: domain.ExerciseTypeWeight, MuscleGroup: "Shoulders", Equipment: "Dumbbell", VideoURL: "https://www.youtube.com/watch?v=3VcKaXpzqRo"},
		{Name: "Front Raise", Type: domain.ExerciseTypeWeight, MuscleGroup: "Shoulders", Equipment: "Dumbbell", VideoURL: "https://www.youtube.com/watch?v=CH9JzDStL3U"},
		{Name: "Reverse Fly", Type: domain.ExerciseTypeWeight, MuscleGroup: "Shoulders (Rear)", Equipment: "Machine", VideoURL: "https://www.youtube.com/watch?v=C7E-O3-KId4"},
		{Name: "Arnold Press", Type: domain.ExerciseTypeWeight, MuscleGroup: "Shoulders", Equipment: "Dumbbell", VideoURL: "https://www.youtube.com/watch?v=fFyrgCWTIaI"},
		{Name: "Upright Row", Type: domain.ExerciseTypeWeight, MuscleGroup: "Shoulders/Traps", Equipment: "Barbell", VideoURL: "https://www.youtube.com/watch?v=amCU-ziHITM"},

		// Arms
		{Name: "Barbell Curl", Type: domain.ExerciseTypeWeight, MuscleGroup: "Biceps", Equipment: "Barbell", VideoURL: "https://www.youtube.com/watch?v=aEscWJ3dS3w"},
		{Name: "Hammer Curl", Type: domain.ExerciseTypeWeight, MuscleGroup: "Biceps", Equipment: "Dumbbell", VideoURL: "https://www.youtube.com/watch?v=obovFxPjXSM"},
		{Name: "Preacher Curl", Type: domain.ExerciseTypeWeight, MuscleGroup: "Biceps", Equipment: "Machine/EZ Bar", VideoURL: "https://www.youtube.com/watch?v=fIWP-FRFNU0"},
		{Name: "Tricep Pushdown", Type: domain.ExerciseTypeWeight, MuscleGroup: "Triceps", Equipment: "Cable", VideoURL: "https://www.youtube.com/watch?v=2-LAMcpzHLU"},
		{Name: "Skullcrusher", Type: domain.ExerciseTypeWeight, MuscleGroup: "Triceps", Equipment: "EZ Bar", VideoURL: "https://www.youtube.com/watch?v=l3rHYPtMUo8"},
		{Name: "Overhead Tricep Extension", Type: domain.ExerciseTypeWeight, MuscleGroup: "Triceps", Equipment: "Dumbbell", VideoURL: "https://www.youtube.com/watch?v=6SS6K3lAw_o"},

		// Core
		{Name: "Plank", Type: domain.ExerciseTypeDuration, MuscleGroup: "Core", Equipment: "Bodyweight", VideoURL: "https://www.youtube.com/watch?v=pSHjTRCQxIw"},
		{Name: "Crunch", Type: domain.ExerciseTypeReps, MuscleGroup: "Core", Equipment: "Bodyweight", VideoURL: "https://www.youtube.com/watch?v=cQ5JKgEZCU4"},
		{Name: "Leg Raise", Type: domain.ExerciseTypeReps, MuscleGroup: "Core", Equipment: "Bodyweight", VideoURL: "https://www.youtube.com/watch?v=jbLpAteP_t4"},
		{Name: "Russian Twist", Type: domain.ExerciseTypeReps, MuscleGroup: "Core", Equipment: "Bodyweight/Weight", VideoURL: "https://www.youtube.com/watch?v=wkD8rjk6OGI"},
		{Name: "Ab Wheel Rollout", Type: domain.ExerciseTypeReps, MuscleGroup: "Core", Equipment: "Ab Wheel", VideoURL: "https://www.youtube.com/watch?v=_BHKT60P6bc"},
		{Name: "Mountain Climber", Type: domain.ExerciseTypeDuration, MuscleGroup: "Core", Equipment: "Bodyweight", VideoURL: "https://www.youtube.com/watch?v=nmwgirgXLYM"},
		{Name: "Bicycle Crunch", Type: domain.ExerciseTypeReps, MuscleGroup: "Core", Equipment: "Bodyweight", VideoURL: "https://www.youtube.com/watch?v=eqg47ZuGZXQ"},
	}

	created, updated := 0, 0
	for i := range exercises {
		ex := exercises[i]
		err := repo.Create(ctx, &ex)
		if err == nil {
			created++
			log.Infof("Created: %s (%s)", ex.Name, ex.Type)
			continue
		}
		if !errors.Is(err, domain.ErrDuplicateExercise) {
			log.Errorf("Error creating %s: %v", ex.Name, err)
			continue
		}

		// Existing entries get the type and metadata from this list.
		existing, err := findByName(ctx, repo, ex.Name)
		if err != nil {
			log.Errorf("Error looking up %s: %v", ex.Name, err)
			continue
		}
		ex.ID = existing.ID
		if err := repo.Update(ctx, &ex); err != nil {
			log.Errorf("Error updating %s: %v", ex.Name, err)
			continue
		}
		updated++
		log.Infof("Updated: %s (%s)", ex.Name, ex.Type)
	}
	log.Infof("Seeding Exercises Complete. created=%d updated=%d", created, updated)
}

func findByName(ctx context.Context, repo *repository.MongoExerciseRepository, name string) (*domain.Exercise, error) {
	matches, err := repo.List(ctx, map[string]interface{}{"name": name})
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return nil, domain.ErrExerciseNotFound
}
