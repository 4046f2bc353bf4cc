package service

import "fittrack/fitness-app/internal/domain"

// DefaultCatalog is inserted into an empty exercise catalog.
func DefaultCatalog() []domain.Exercise {
	return []domain.Exercise{
		{
			Name:          "Barbell Bench Press",
			Category:      "upper_body",
			Difficulty:    "intermediate",
			Description:   "A compound press for the chest, shoulders and triceps.",
			TargetMuscles: []string{"chest", "shoulders", "triceps"},
			Equipment:     []string{"barbell", "bench"},
			Instructions: []string{
				"Lie on the bench with your eyes under the bar.",
				"Lower the bar to mid-chest with elbows at about 45 degrees.",
				"Press the bar back up until your arms are straight.",
			},
			ExerciseType:    domain.ExerciseTypeWeight,
			MeasurementUnit: "lbs",
		},
		{
			Name:          "Back Squat",
			Category:      "lower_body",
			Difficulty:    "intermediate",
			Description:   "The main lower body strength lift.",
			TargetMuscles: []string{"quadriceps", "glutes", "hamstrings"},
			Equipment:     []string{"barbell", "squat rack"},
			Instructions: []string{
				"Rest the bar on your upper back and brace your core.",
				"Sit down and back until your thighs are at least parallel.",
				"Drive up through your whole foot.",
			},
			ExerciseType:    domain.ExerciseTypeWeight,
			MeasurementUnit: "lbs",
		},
		{
			Name:          "Deadlift",
			Category:      "full_body",
			Difficulty:    "advanced",
			Description:   "A hip hinge lifting the bar from the floor.",
			TargetMuscles: []string{"hamstrings", "glutes", "lower back"},
			Equipment:     []string{"barbell"},
			Instructions: []string{
				"Stand with the bar over mid-foot and grip it just outside your legs.",
				"Keep your back flat and push the floor away.",
				"Lock out with hips and knees together, then lower under control.",
			},
			ExerciseType:    domain.ExerciseTypeWeight,
			MeasurementUnit: "lbs",
		},
		{
			Name:            "Dumbbell Shoulder Press",
			Category:        "upper_body",
			Difficulty:      "beginner",
			Description:     "Overhead press with dumbbells.",
			TargetMuscles:   []string{"shoulders", "triceps"},
			Equipment:       []string{"dumbbells"},
			Instructions:    []string{"Hold the dumbbells at shoulder height.", "Press them overhead without arching your back."},
			ExerciseType:    domain.ExerciseTypeWeight,
			MeasurementUnit: "lbs",
		},
		{
			Name:            "Bent-Over Row",
			Category:        "upper_body",
			Difficulty:      "intermediate",
			Description:     "A horizontal pull for the upper back.",
			TargetMuscles:   []string{"lats", "rhomboids", "biceps"},
			Equipment:       []string{"barbell"},
			Instructions:    []string{"Hinge forward with a flat back.", "Pull the bar to your lower ribs.", "Lower it with control."},
			ExerciseType:    domain.ExerciseTypeWeight,
			MeasurementUnit: "lbs",
		},
		{
			Name:            "Romanian Deadlift",
			Category:        "lower_body",
			Difficulty:      "intermediate",
			Description:     "A hinge that loads the hamstrings through a long range.",
			TargetMuscles:   []string{"hamstrings", "glutes"},
			Equipment:       []string{"barbell"},
			Instructions:    []string{"Start standing with the bar at your hips.", "Push your hips back until you feel a hamstring stretch.", "Return to standing."},
			ExerciseType:    domain.ExerciseTypeWeight,
			MeasurementUnit: "lbs",
		},
		{
			Name:          "Push-ups",
			Category:      "upper_body",
			Difficulty:    "beginner",
			Description:   "A classic bodyweight exercise that works multiple muscle groups simultaneously.",
			TargetMuscles: []string{"chest", "shoulders", "triceps"},
			Instructions: []string{
				"Start in a plank position with your hands slightly wider than shoulder-width apart.",
				"Lower your body until your chest nearly touches the floor.",
				"Push yourself back up to the starting position.",
				"Keep your body in a straight line throughout the movement.",
			},
			ExerciseType: domain.ExerciseTypeBodyweight,
		},
		{
			Name:          "Pull-ups",
			Category:      "upper_body",
			Difficulty:    "advanced",
			Description:   "A vertical pull with your own body weight.",
			TargetMuscles: []string{"lats", "biceps"},
			Equipment:     []string{"pull-up bar"},
			Instructions:  []string{"Hang with straight arms.", "Pull until your chin clears the bar.", "Lower all the way down."},
			ExerciseType:  domain.ExerciseTypeBodyweight,
		},
		{
			Name:          "Walking Lunges",
			Category:      "lower_body",
			Difficulty:    "beginner",
			Description:   "Alternating forward lunges.",
			TargetMuscles: []string{"quadriceps", "glutes"},
			Instructions:  []string{"Step forward and lower your back knee toward the floor.", "Push through the front foot into the next step."},
			ExerciseType:  domain.ExerciseTypeBodyweight,
		},
		{
			Name:          "Glute Bridge",
			Category:      "rehab",
			Difficulty:    "beginner",
			Description:   "A low-impact hip extension, useful for back and knee rehab.",
			TargetMuscles: []string{"glutes", "hamstrings"},
			Instructions:  []string{"Lie on your back with knees bent.", "Lift your hips until your body is straight from knees to shoulders.", "Hold briefly and lower."},
			ExerciseType:  domain.ExerciseTypeBodyweight,
		},
		{
			Name:            "Plank",
			Category:        "core",
			Difficulty:      "beginner",
			Description:     "An isometric hold for the whole trunk.",
			TargetMuscles:   []string{"abdominals", "obliques"},
			Instructions:    []string{"Support yourself on forearms and toes.", "Keep a straight line from head to heels."},
			ExerciseType:    domain.ExerciseTypeTime,
			MeasurementUnit: "seconds",
		},
		{
			Name:            "Wall Sit",
			Category:        "lower_body",
			Difficulty:      "beginner",
			Description:     "An isometric squat against a wall.",
			TargetMuscles:   []string{"quadriceps"},
			Instructions:    []string{"Slide down a wall until your knees are at 90 degrees.", "Hold the position."},
			ExerciseType:    domain.ExerciseTypeTime,
			MeasurementUnit: "seconds",
		},
		{
			Name:            "Jump Rope",
			Category:        "cardio",
			Difficulty:      "beginner",
			Description:     "Continuous skipping for conditioning.",
			TargetMuscles:   []string{"calves", "shoulders"},
			Equipment:       []string{"jump rope"},
			Instructions:    []string{"Turn the rope with your wrists.", "Land softly on the balls of your feet."},
			ExerciseType:    domain.ExerciseTypeTime,
			MeasurementUnit: "seconds",
		},
		{
			Name:            "Running",
			Category:        "cardio",
			Difficulty:      "beginner",
			Description:     "Steady-state running outdoors or on a treadmill.",
			TargetMuscles:   []string{"legs", "heart"},
			Instructions:    []string{"Keep a pace at which you can still talk.", "Land under your hips with short strides."},
			ExerciseType:    domain.ExerciseTypeDistance,
			MeasurementUnit: "km",
		},
		{
			Name:            "Rowing Machine",
			Category:        "cardio",
			Difficulty:      "intermediate",
			Description:     "Full body conditioning on an ergometer.",
			TargetMuscles:   []string{"back", "legs", "arms"},
			Equipment:       []string{"rowing machine"},
			Instructions:    []string{"Drive with the legs first, then lean back and pull.", "Return in the reverse order."},
			ExerciseType:    domain.ExerciseTypeDistance,
			MeasurementUnit: "m",
		},
		{
			Name:            "Sled Push",
			Category:        "sport_specific",
			Difficulty:      "advanced",
			Description:     "Acceleration and leg drive work for field sports.",
			TargetMuscles:   []string{"quadriceps", "glutes", "calves"},
			Equipment:       []string{"sled"},
			Instructions:    []string{"Lean into the handles with straight arms.", "Drive the sled with short powerful steps."},
			ExerciseType:    domain.ExerciseTypeDistance,
			MeasurementUnit: "m",
		},
	}
}
