package model

// Sample returns the fixed demo document used by the "load sample" action.
func Sample() Document {
	return Document{
		PersonalInfo: PersonalInfo{
			Name:     "Alex Thompson",
			Email:    "alex.thompson@email.com",
			Phone:    "(555) 123-4567",
			Location: "San Francisco, CA",
			Summary:  "Results-driven software engineer with 5+ years of experience in full-stack development. Specialized in React, Node.js, and cloud technologies. Led multiple successful projects delivering scalable solutions that improved user engagement by 40%. Passionate about clean code and mentoring junior developers.",
		},
		Experience: []Experience{
			{
				Company:     "TechCorp Solutions",
				Position:    "Senior Software Engineer",
				StartDate:   "2021-01",
				EndDate:     "Present",
				Description: "• Led a team of 5 developers in rebuilding the company's flagship product using React and TypeScript\n• Implemented CI/CD pipeline reducing deployment time by 60%\n• Mentored 3 junior developers who were promoted to mid-level positions\n• Optimized database queries resulting in 30% faster page load times",
			},
			{
				Company:     "InnovateSoft Inc",
				Position:    "Software Engineer",
				StartDate:   "2018-06",
				EndDate:     "2020-12",
				Description: "• Developed and maintained 10+ microservices using Node.js and Express\n• Collaborated with UX team to implement responsive design patterns\n• Reduced bug reports by 40% through implementation of comprehensive testing strategy\n• Contributed to open-source projects and internal development tools",
			},
		},
		Education: []Education{
			{
				School:         "University of California, Berkeley",
				Degree:         "Master of Science",
				Field:          "Computer Science",
				GraduationDate: "2018",
				GPA:            "3.8",
			},
			{
				School:         "Stanford University",
				Degree:         "Bachelor of Science",
				Field:          "Software Engineering",
				GraduationDate: "2016",
				GPA:            "3.9",
			},
		},
		ExtraCurriculars: []ExtraCurricular{
			{
				Organization: "Code for Good",
				Role:         "Technical Lead",
				StartDate:    "2019-03",
				EndDate:      "Present",
				Description:  "• Lead volunteer coding workshops for underprivileged youth\n• Developed curriculum for web development basics\n• Organized annual hackathon with 200+ participants",
			},
		},
		Skills: []string{
			"React",
			"TypeScript",
			"Node.js",
			"Python",
			"AWS",
			"Docker",
			"GraphQL",
			"CI/CD",
			"Agile Methodologies",
			"Team Leadership",
		},
	}
}
